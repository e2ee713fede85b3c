//go:build !integration

package payment

import (
	"strings"
	"testing"
)

const (
	testHashKey = "5294y06JbISpM5x9"
	testHashIV  = "v77hoKGq4kWxNNIS"
)

func sampleFields() map[string]string {
	return map[string]string{
		"MerchantID":        "2000132",
		"MerchantTradeNo":   "DC20240101123456abcd",
		"MerchantTradeDate": "2024/01/01 12:34:56",
		"PaymentType":       "aio",
		"TotalAmount":       "500",
		"TradeDesc":         "測試交易",
		"ItemName":          "商品",
		"ReturnURL":         "https://example.com/payment_info",
		"ChoosePayment":     "CVS",
		"EncryptType":       "1",
	}
}

func TestCheckMacValue_Deterministic(t *testing.T) {
	a := CheckMacValue(sampleFields(), testHashKey, testHashIV)
	b := CheckMacValue(sampleFields(), testHashKey, testHashIV)
	if a != b {
		t.Fatalf("same input produced different signatures: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != strings.ToUpper(a) {
		t.Errorf("signature is not uppercase: %s", a)
	}
}

func TestCheckMacValue_InsertionOrderIrrelevant(t *testing.T) {
	// Build the same logical map by inserting keys in reverse order.
	src := sampleFields()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	reversed := make(map[string]string, len(src))
	for i := len(keys) - 1; i >= 0; i-- {
		reversed[keys[i]] = src[keys[i]]
	}
	if CheckMacValue(src, testHashKey, testHashIV) != CheckMacValue(reversed, testHashKey, testHashIV) {
		t.Fatal("signature depends on insertion order")
	}
}

func TestCheckMacValue_IgnoresSignatureField(t *testing.T) {
	plain := sampleFields()
	withMac := sampleFields()
	withMac[CheckMacValueField] = "DEADBEEF"
	if CheckMacValue(plain, testHashKey, testHashIV) != CheckMacValue(withMac, testHashKey, testHashIV) {
		t.Fatal("a present CheckMacValue leaked into the signed payload")
	}
}

func TestCheckMacValue_EmptyMap(t *testing.T) {
	a := CheckMacValue(map[string]string{}, testHashKey, testHashIV)
	b := CheckMacValue(map[string]string{}, testHashKey, testHashIV)
	if a != b || len(a) != 64 {
		t.Fatalf("degenerate signature not deterministic: %q vs %q", a, b)
	}
}

func TestCheckMacValue_SecretsMatter(t *testing.T) {
	a := CheckMacValue(sampleFields(), testHashKey, testHashIV)
	b := CheckMacValue(sampleFields(), "otherKey12345678", testHashIV)
	c := CheckMacValue(sampleFields(), testHashKey, "otherIV987654321")
	if a == b || a == c {
		t.Fatal("signature did not change with the secret pair")
	}
}

func TestVerifyCheckMacValue(t *testing.T) {
	t.Run("round trip verifies", func(t *testing.T) {
		fields := sampleFields()
		fields[CheckMacValueField] = CheckMacValue(fields, testHashKey, testHashIV)
		if !VerifyCheckMacValue(fields, testHashKey, testHashIV) {
			t.Fatal("freshly signed map failed verification")
		}
	})

	t.Run("case-insensitive compare", func(t *testing.T) {
		fields := sampleFields()
		fields[CheckMacValueField] = strings.ToLower(CheckMacValue(fields, testHashKey, testHashIV))
		if !VerifyCheckMacValue(fields, testHashKey, testHashIV) {
			t.Fatal("lowercased claimed signature should still verify")
		}
	})

	t.Run("tampering any field fails", func(t *testing.T) {
		base := sampleFields()
		base[CheckMacValueField] = CheckMacValue(base, testHashKey, testHashIV)
		for key := range sampleFields() {
			fields := make(map[string]string, len(base))
			for k, v := range base {
				fields[k] = v
			}
			fields[key] = fields[key] + "x"
			if VerifyCheckMacValue(fields, testHashKey, testHashIV) {
				t.Errorf("verification passed after mutating %s", key)
			}
		}
	})

	t.Run("missing signature fails closed", func(t *testing.T) {
		if VerifyCheckMacValue(sampleFields(), testHashKey, testHashIV) {
			t.Fatal("map without CheckMacValue verified")
		}
		if VerifyCheckMacValue(map[string]string{}, testHashKey, testHashIV) {
			t.Fatal("empty map verified")
		}
	})

	t.Run("wrong secrets fail", func(t *testing.T) {
		fields := sampleFields()
		fields[CheckMacValueField] = CheckMacValue(fields, testHashKey, testHashIV)
		if VerifyCheckMacValue(fields, "wrongKey", testHashIV) {
			t.Fatal("verification passed with the wrong key")
		}
	})
}
