//go:build !integration

package payment

import (
	"strings"
	"testing"
)

func TestBuildCheckoutForm(t *testing.T) {
	const action = "https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5"

	t.Run("embeds every field as a hidden input", func(t *testing.T) {
		out, err := buildCheckoutForm(action, map[string]string{
			"MerchantID":      "2000132",
			"MerchantTradeNo": "T0001",
		})
		if err != nil {
			t.Fatalf("buildCheckoutForm: %v", err)
		}
		html := string(out)
		if !strings.Contains(html, `action="`+action+`"`) {
			t.Errorf("form action missing: %s", html)
		}
		for _, want := range []string{
			`name="MerchantID" value="2000132"`,
			`name="MerchantTradeNo" value="T0001"`,
			`document.getElementById("ecpay-checkout").submit()`,
		} {
			if !strings.Contains(html, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("escapes markup-breaking values", func(t *testing.T) {
		out, err := buildCheckoutForm(action, map[string]string{
			"ItemName": `<b>"A&B"</b>`,
		})
		if err != nil {
			t.Fatalf("buildCheckoutForm: %v", err)
		}
		html := string(out)
		if strings.Contains(html, "<b>") {
			t.Errorf("raw markup leaked into an attribute: %s", html)
		}
		if !strings.Contains(html, "&lt;b&gt;") {
			t.Errorf("expected escaped value in output: %s", html)
		}
	})

	t.Run("output is deterministic", func(t *testing.T) {
		fields := map[string]string{"B": "2", "A": "1", "C": "3"}
		a, _ := buildCheckoutForm(action, fields)
		b, _ := buildCheckoutForm(action, fields)
		if string(a) != string(b) {
			t.Fatal("same fields rendered differently")
		}
		if strings.Index(string(a), `name="A"`) > strings.Index(string(a), `name="B"`) {
			t.Error("fields are not emitted in sorted order")
		}
	})
}
