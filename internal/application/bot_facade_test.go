//go:build !integration

package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"ecpay-checkout-bot/internal/config"
	"ecpay-checkout-bot/internal/domain"
	"ecpay-checkout-bot/internal/domain/model"
	"ecpay-checkout-bot/internal/usecase"
)

type mockPaymentUC struct {
	issueFunc  func(ctx context.Context, req usecase.IssueRequest) (*model.CheckoutResult, error)
	verifyFunc func(ctx context.Context, fields map[string]string) bool
}

func (m *mockPaymentUC) Issue(ctx context.Context, req usecase.IssueRequest) (*model.CheckoutResult, error) {
	return m.issueFunc(ctx, req)
}

func (m *mockPaymentUC) VerifyCallback(ctx context.Context, fields map[string]string) bool {
	return m.verifyFunc(ctx, fields)
}

func cvsResult() *model.CheckoutResult {
	created := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	return &model.CheckoutResult{
		FormHTML: []byte("<html></html>"),
		Info: model.OrderInfo{
			TradeNo:     "DC20260828103000ab12cd34",
			Amount:      500,
			ItemName:    "商品",
			Method:      model.MethodCVS,
			MethodSpec:  mustSpec(model.MethodCVS),
			StoreType:   model.StoreAll,
			CreatedAt:   created,
			ExpiresAt:   created.AddDate(0, 0, 7),
			ExpireDate:  "2026/09/04",
			PaymentCode: "ALL12345 67890",
			MachineCode: "88123456789012",
		},
	}
}

func mustSpec(m model.PaymentMethod) model.MethodSpec {
	s, _ := m.Spec()
	return s
}

func TestHandleCreatePayment(t *testing.T) {
	uc := &mockPaymentUC{
		issueFunc: func(_ context.Context, req usecase.IssueRequest) (*model.CheckoutResult, error) {
			return cvsResult(), nil
		},
	}
	facade := NewBotFacade(uc, &config.ECPayConfig{MerchantID: "2000132", ExpireDays: 7})

	reply, err := facade.HandleCreatePayment(context.Background(), usecase.IssueRequest{
		Amount: 500, TradeDesc: "測試", Method: model.MethodCVS, StoreType: model.StoreAll,
	})
	if err != nil {
		t.Fatalf("HandleCreatePayment: %v", err)
	}
	for _, want := range []string{
		"DC20260828103000ab12cd34", // trade no
		"88123456789012",           // ibon code for ALL
		"ALL12345 67890",           // generic store code for ALL
		"NT$ 500",
		"2026/09/04",
	} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("reply missing %q:\n%s", want, reply.Text)
		}
	}
	if len(reply.Document) == 0 {
		t.Error("checkout document should be attached")
	}
	if reply.Filename != "ecpay_payment_DC20260828103000ab12cd34.html" {
		t.Errorf("filename = %q", reply.Filename)
	}
}

func TestHandleCreatePayment_Error(t *testing.T) {
	uc := &mockPaymentUC{
		issueFunc: func(context.Context, usecase.IssueRequest) (*model.CheckoutResult, error) {
			return nil, &domain.InvalidAmountError{Method: "CVS", Amount: 99999, Limit: 20000}
		},
	}
	facade := NewBotFacade(uc, &config.ECPayConfig{})

	_, err := facade.HandleCreatePayment(context.Background(), usecase.IssueRequest{Amount: 99999, Method: model.MethodCVS})
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := FormatError(err)
	if !strings.Contains(msg, "20000") {
		t.Errorf("error message should carry the limit: %q", msg)
	}
}

func TestHandleStatus(t *testing.T) {
	facade := NewBotFacade(nil, &config.ECPayConfig{})

	text, err := facade.HandleStatus(context.Background(), "DC123")
	if err != nil {
		t.Fatalf("HandleStatus: %v", err)
	}
	if !strings.Contains(text, "DC123") {
		t.Errorf("status reply missing trade no: %q", text)
	}

	if _, err := facade.HandleStatus(context.Background(), "   "); err == nil {
		t.Error("blank trade number should error")
	}
}

func TestHandleHelp_OwnerSection(t *testing.T) {
	facade := NewBotFacade(nil, &config.ECPayConfig{ExpireDays: 7})

	if text := facade.HandleHelp(false); strings.Contains(text, "/sysinfo") {
		t.Error("non-owner help should not list /sysinfo")
	}
	if text := facade.HandleHelp(true); !strings.Contains(text, "/sysinfo") {
		t.Error("owner help should list /sysinfo")
	}
}

func TestHandleBotInfo_Environment(t *testing.T) {
	sandbox := NewBotFacade(nil, &config.ECPayConfig{MerchantID: "2000132", Sandbox: true})
	if text := sandbox.HandleBotInfo(); !strings.Contains(text, "測試環境") {
		t.Errorf("sandbox info should say 測試環境:\n%s", text)
	}
	prod := NewBotFacade(nil, &config.ECPayConfig{MerchantID: "8012345"})
	text := prod.HandleBotInfo()
	if !strings.Contains(text, "正式環境") || !strings.Contains(text, "8012345") {
		t.Errorf("production info should carry environment and merchant id:\n%s", text)
	}
}

func TestHandleSysInfo(t *testing.T) {
	facade := NewBotFacade(nil, &config.ECPayConfig{})
	text := facade.HandleSysInfo()
	for _, want := range []string{"Goroutines", "記憶體使用"} {
		if !strings.Contains(text, want) {
			t.Errorf("sysinfo missing %q:\n%s", want, text)
		}
	}
}

func TestFormatError_FallsBackToGeneric(t *testing.T) {
	msg := FormatError(context.DeadlineExceeded)
	if !strings.Contains(msg, "稍後再試") {
		t.Errorf("unexpected generic message: %q", msg)
	}
}
