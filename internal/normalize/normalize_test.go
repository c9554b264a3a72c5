package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medorder/internal/domain"
)

func TestPhone(t *testing.T) {
	n := New("")
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ten digits", "9876543210", "+919876543210"},
		{"with country code", "919876543210", "+919876543210"},
		{"formatted", "+91 98765-43210", "+919876543210"},
		{"empty", "", "+910000000000"},
		{"short", "12345", "+910000012345"},
		{"letters only", "n/a", "+910000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Phone(tt.in))
		})
	}
}

func TestPhone_CustomCountryCode(t *testing.T) {
	assert.Equal(t, "+449876543210", New("+44").Phone("9876543210"))
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		guessed bool
	}{
		{"2 strips", 2, false},
		{"strip", 1, true},
		{"five", 1, true},
		{"", 1, true},
		{"take 3 then 4", 3, false},
		{"0", 1, true},
		{"99999999999999999999999", 1, true},
	}
	for _, tt := range tests {
		got, guessed := Quantity(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.guessed, guessed, tt.in)
	}
}

func TestPackaging(t *testing.T) {
	assert.Equal(t, domain.PackagingTube, Packaging("TUBE pack"))
	assert.Equal(t, domain.PackagingStrip, Packaging("unknown"))
	assert.Equal(t, domain.PackagingBottle, Packaging("2 Bottles"))
	// strip outranks box when both appear
	assert.Equal(t, domain.PackagingStrip, Packaging("box of strips"))
}

func TestCustomerName(t *testing.T) {
	assert.Equal(t, "Customer", CustomerName("   "))
	assert.Equal(t, "Ramesh", CustomerName(" Ramesh "))
}

func TestVoiceOrder(t *testing.T) {
	n := New("91")
	got := n.VoiceOrder(VoiceOrder{
		CustomerName:  "",
		CustomerPhone: float64(9876543210),
		Medicines: []map[string]any{
			{"name": " Dolo 650 ", "quantity": "2 strips", "packaging": "STRIP"},
			{"medicine_name": "Crocin", "qty": 3, "packaging_type": "bottle"},
			{"name": "  ", "quantity": "1"},
			{"medicine": "Azithral", "quantity": "five"},
			{"name": map[string]any{"nested": true}},
		},
		Transcript: "do patta dolo",
	})

	assert.Equal(t, "Customer", got.CustomerName)
	assert.Equal(t, "+919876543210", got.CustomerPhone)
	assert.Equal(t, DefaultLanguage, got.Language)
	assert.Equal(t, "do patta dolo", got.Transcript)
	require.Len(t, got.Items, 3)
	assert.Equal(t, Item{Name: "Dolo 650", Quantity: 2, Packaging: domain.PackagingStrip}, got.Items[0])
	assert.Equal(t, Item{Name: "Crocin", Quantity: 3, Packaging: domain.PackagingBottle}, got.Items[1])
	assert.Equal(t, Item{Name: "Azithral", Quantity: 1, Packaging: domain.PackagingStrip}, got.Items[2])
	assert.Len(t, got.Warnings, 3)
}

func TestVoiceOrder_Idempotent(t *testing.T) {
	n := New("91")
	first := n.VoiceOrder(VoiceOrder{
		CustomerName:    "Sita",
		CustomerPhone:   "98765 43210",
		CustomerAddress: " MG Road ",
		Language:        "Hinglish",
		Medicines: []map[string]any{
			{"name": "Dolo 650", "quantity": 2, "packaging": "tube pack"},
		},
	})
	second := n.VoiceOrder(first.Payload())
	assert.Equal(t, first, second)
}
