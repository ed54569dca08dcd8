package domain

import "testing"

func TestNormalizeBusinessID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "0112038-9", "0112038-9", false},
		{"valid computed check", "1234567-1", "1234567-1", false},
		{"surrounding whitespace", "  0112038-9 ", "0112038-9", false},
		{"six digit body padded", "112038-9", "0112038-9", false},
		{"wrong check digit", "1234567-8", "", true},
		{"missing dash", "01120389", "", true},
		{"letters", "ABC1234-5", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBusinessID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeBusinessID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
