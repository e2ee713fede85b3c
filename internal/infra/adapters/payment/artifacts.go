package payment

import (
	"fmt"
	"math/rand"
	"strings"

	"ecpay-checkout-bot/internal/domain/model"
)

// kioskServiceCode is the fixed 2-digit service prefix for 7-ELEVEN kiosk
// payment codes issued through this provider.
const kioskServiceCode = "88"

// atmBankCodes is the set of collecting banks the gateway assigns virtual
// accounts under.
var atmBankCodes = []string{"004", "005", "007", "013", "812", "822"}

// The artifacts below are locally synthesized presentation values. In a live
// integration they arrive in the gateway's asynchronous payment-info
// callback; that ingestion is out of scope here, so the shapes are
// fabricated from the trade number plus injected randomness.

func randDigits(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rng.Intn(10)))
	}
	return b.String()
}

// kioskCode builds the 14-digit kiosk (ibon) code: the service prefix plus a
// 12-digit transaction id taken from the digits of the trade number, padded
// with generated digits when short.
func kioskCode(rng *rand.Rand, tradeNo string) string {
	var digits strings.Builder
	for _, r := range tradeNo {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	id := digits.String()
	if len(id) < 12 {
		id += randDigits(rng, 12-len(id))
	}
	return kioskServiceCode + id[:12]
}

// storeCode generates the chain-specific payment code shown to the user.
func storeCode(rng *rand.Rand, store model.StoreType, tradeNo string) string {
	switch store {
	case model.StoreSeven:
		return kioskCode(rng, tradeNo)
	case model.StoreFamily:
		return "FM" + randDigits(rng, 10)
	case model.StoreHiLife:
		return "HL" + randDigits(rng, 8)
	case model.StoreOK:
		return "OK" + randDigits(rng, 9)
	default: // ALL: two 5-digit groups, usable at any chain
		return fmt.Sprintf("%05d%05d", 10000+rng.Intn(90000), 10000+rng.Intn(90000))
	}
}

func barcodes(rng *rand.Rand) [3]string {
	var out [3]string
	for i := range out {
		out[i] = fmt.Sprintf("%d", 100_000_000_000+rng.Int63n(900_000_000_000))
	}
	return out
}

func atmAccount(rng *rand.Rand) (bankCode, virtualAccount string) {
	return atmBankCodes[rng.Intn(len(atmBankCodes))], randDigits(rng, 14)
}

// fillArtifacts populates the method-specific artifacts on the order info.
// Methods that send the user straight to the hosted checkout get none.
func fillArtifacts(rng *rand.Rand, info *model.OrderInfo, req model.OrderRequest) {
	switch req.Method {
	case model.MethodCVS:
		store := req.StoreType
		if store == "" {
			store = model.StoreAll
		}
		info.StoreType = store
		info.PaymentCode = storeCode(rng, store, req.TradeNo)
		// Some presentation paths show the kiosk code alongside the
		// generic one, so it is always computed.
		info.MachineCode = kioskCode(rng, req.TradeNo)
	case model.MethodBarcode:
		info.Barcodes = barcodes(rng)
	case model.MethodATM:
		info.BankCode, info.VirtualAccount = atmAccount(rng)
	}
}
