package signal

import "testing"

type userModel struct{}

func TestSenderLabel(t *testing.T) {
	tests := []struct {
		name   string
		sender any
		want   string
	}{
		{"string labels itself", "OrderService", "OrderService"},
		{"struct labels as type name", userModel{}, "userModel"},
		{"pointer dereferences", &userModel{}, "userModel"},
		{"nil is empty", nil, ""},
		{"empty string stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SenderLabel(tt.sender); got != tt.want {
				t.Errorf("SenderLabel(%v) = %q, want %q", tt.sender, got, tt.want)
			}
		})
	}
}

func TestMatchesSender(t *testing.T) {
	if !matchesSender("", "anyone") {
		t.Error("empty filter must admit every sender")
	}
	if !matchesSender("userModel", &userModel{}) {
		t.Error("filter must match the sender's type name")
	}
	if matchesSender("OtherModel", &userModel{}) {
		t.Error("filter must reject a mismatched label")
	}
	if !matchesSender("OrderService", "OrderService") {
		t.Error("filter must match a string sender directly")
	}
}
