package extract

import (
	"testing"
)

func detectAll(t *testing.T, name, text string) []Match {
	t.Helper()
	var all []Match
	for _, d := range DefaultDetectors() {
		if d.Name() != name {
			continue
		}
		all = append(all, d.Detect(text)...)
	}
	return all
}

func TestBTCDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "legacy P2PKH address",
			text: "send payment to 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa please",
			want: []string{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		},
		{
			name: "P2SH address",
			text: "deposit: 3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy",
			want: []string{"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"},
		},
		{
			name: "bech32 address",
			text: "segwit bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq works",
			want: []string{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"},
		},
		{
			name: "bech32 uppercase accepted",
			text: "BC1QW508D6QEJXTDG4Y5R3ZARVARY0C5XW7KV8F3T4",
			want: []string{"BC1QW508D6QEJXTDG4Y5R3ZARVARY0C5XW7KV8F3T4"},
		},
		{
			name: "bech32 mixed case rejected",
			text: "bogus bc1Qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4 string",
			want: nil,
		},
		{
			name: "base58 excludes ambiguous characters",
			text: "not an address: 1OOOOOOOOOOOOOOOOOOOOOOOOOOOOO",
			want: nil,
		},
		{
			name: "embedded in longer token not matched",
			text: "id=x1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNay",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := detectAll(t, DetectorBTC, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Value != tt.want[i] {
					t.Errorf("match[%d] = %q, want %q", i, got[i].Value, tt.want[i])
				}
			}
		})
	}
}

func TestETHDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "checksummed address",
			text: "pay to 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed now",
			want: []string{"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		},
		{
			name: "lowercase address",
			text: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
			want: []string{"0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"},
		},
		{
			name: "too short",
			text: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697ba",
			want: nil,
		},
		{
			name: "transaction hash not matched as address",
			text: "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := detectAll(t, DetectorETH, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Value != tt.want[i] {
					t.Errorf("match[%d] = %q, want %q", i, got[i].Value, tt.want[i])
				}
			}
		})
	}
}

func TestTRONDetector(t *testing.T) {
	t.Parallel()

	got := detectAll(t, DetectorTRON, "USDT TRC-20: TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t thanks")
	if len(got) != 1 || got[0].Value != "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t" {
		t.Errorf("matches = %v", got)
	}

	// "Transaction" capitalized mid-sentence must not match.
	if got := detectAll(t, DetectorTRON, "The Transaction completed successfully today"); len(got) != 0 {
		t.Errorf("false positive: %v", got)
	}
}

func TestIBANDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "german IBAN",
			text: "wire to DE89370400440532013000 before friday",
			want: []string{"DE89370400440532013000"},
		},
		{
			name: "british IBAN",
			text: "account GB29NWBK60161331926819",
			want: []string{"GB29NWBK60161331926819"},
		},
		{
			name: "lowercase not matched",
			text: "de89370400440532013000",
			want: nil,
		},
		{
			name: "too short",
			text: "DE8937040044",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := detectAll(t, DetectorIBAN, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Value != tt.want[i] {
					t.Errorf("match[%d] = %q, want %q", i, got[i].Value, tt.want[i])
				}
			}
		})
	}
}

func TestLabeledDetectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		detector string
		text     string
		want     []string
	}{
		{
			name:     "beneficiary name with colon",
			detector: DetectorBeneficiaryName,
			text:     "Beneficiary Name: Acme Trading Ltd\nAmount: 500",
			want:     []string{"Acme Trading Ltd"},
		},
		{
			name:     "beneficiary bare label",
			detector: DetectorBeneficiaryName,
			text:     "beneficiary: John Q. Public",
			want:     []string{"John Q. Public"},
		},
		{
			name:     "beneficiary underscore label",
			detector: DetectorBeneficiaryName,
			text:     "beneficiary_name= Maria Santos",
			want:     []string{"Maria Santos"},
		},
		{
			name:     "bank name",
			detector: DetectorBankName,
			text:     "Bank Name: First National Bank of Springfield",
			want:     []string{"First National Bank of Springfield"},
		},
		{
			name:     "bank bare label",
			detector: DetectorBankName,
			text:     "bank: Deutsche Bank AG, Frankfurt",
			want:     []string{"Deutsche Bank AG, Frankfurt"},
		},
		{
			name:     "numeric-only value rejected",
			detector: DetectorBankName,
			text:     "bank: 12345",
			want:     nil,
		},
		{
			name:     "form placeholder rejected",
			detector: DetectorBeneficiaryName,
			text:     "Beneficiary Name: required",
			want:     nil,
		},
		{
			name:     "no label no match",
			detector: DetectorBeneficiaryName,
			text:     "the beneficiary will be notified by mail",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := detectAll(t, tt.detector, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Value != tt.want[i] {
					t.Errorf("match[%d] = %q, want %q", i, got[i].Value, tt.want[i])
				}
			}
		})
	}
}

func TestDetectReportsPositions(t *testing.T) {
	t.Parallel()

	text := "prefix DE89370400440532013000 suffix"
	got := detectAll(t, DetectorIBAN, text)
	if len(got) != 1 {
		t.Fatalf("matches = %v", got)
	}
	if text[got[0].Start:got[0].End] != got[0].Value {
		t.Errorf("offsets [%d:%d] do not cover the value", got[0].Start, got[0].End)
	}
}

func TestDefaultDetectorsOrderStable(t *testing.T) {
	t.Parallel()

	first := DefaultDetectors()
	second := DefaultDetectors()
	if len(first) != len(second) {
		t.Fatal("battery size changed between calls")
	}
	for i := range first {
		if first[i].Name() != second[i].Name() {
			t.Errorf("battery order differs at %d: %s vs %s", i, first[i].Name(), second[i].Name())
		}
	}
}
