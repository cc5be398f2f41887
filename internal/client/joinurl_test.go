package client

import "testing"

func TestRoomFromURL(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"http://duel.test?room=ab12cd34ef56", "ab12cd34ef56", true},
		{"http://duel.test/play?mode=duel&room=ff00ff00ff00", "ff00ff00ff00", true},
		{"http://duel.test", "", false},
		{"http://duel.test?room=", "", false},
		{"://not a url", "", false},
	}

	for _, tt := range tests {
		got, ok := RoomFromURL(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("RoomFromURL(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
