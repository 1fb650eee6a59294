package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				Identity:  "p1",
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestDecodeWordDetails(t *testing.T) {
	tests := []struct {
		name    string
		blob    string
		wantLen int
	}{
		{
			name:    "valid blob",
			blob:    `[{"word":"fox","matched":true,"score":92},{"word":"jumps","matched":false,"score":41}]`,
			wantLen: 2,
		},
		{
			name:    "empty blob",
			blob:    "",
			wantLen: 0,
		},
		{
			name:    "malformed json",
			blob:    `[{"word":"fox"`,
			wantLen: 0,
		},
		{
			name:    "wrong shape",
			blob:    `{"word":"fox"}`,
			wantLen: 0,
		},
		{
			name:    "json null",
			blob:    "null",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := DecodeWordDetails(tt.blob)
			if details == nil {
				t.Fatal("DecodeWordDetails() returned nil, want empty slice")
			}
			if len(details) != tt.wantLen {
				t.Errorf("DecodeWordDetails() returned %d details, want %d", len(details), tt.wantLen)
			}
		})
	}
}

func TestEncodeWordDetailsRoundTrip(t *testing.T) {
	details := []WordDetail{
		{Word: "she", Matched: true, Score: 88},
		{Word: "sells", Matched: false, Score: 35},
	}

	blob, err := EncodeWordDetails(details)
	if err != nil {
		t.Fatalf("EncodeWordDetails() error = %v", err)
	}

	decoded := DecodeWordDetails(blob)
	if len(decoded) != len(details) {
		t.Fatalf("decoded %d details, want %d", len(decoded), len(details))
	}
	for i, d := range decoded {
		if d != details[i] {
			t.Errorf("detail %d = %+v, want %+v", i, d, details[i])
		}
	}
}

func TestEncodeWordDetailsNil(t *testing.T) {
	blob, err := EncodeWordDetails(nil)
	if err != nil {
		t.Fatalf("EncodeWordDetails(nil) error = %v", err)
	}
	if blob != "[]" {
		t.Errorf("EncodeWordDetails(nil) = %q, want %q", blob, "[]")
	}
}

func TestRubricUpdateValidate(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name   string
		update RubricUpdate
		want   bool
	}{
		{
			name:   "empty update",
			update: RubricUpdate{},
			want:   true,
		},
		{
			name: "all weights in range",
			update: RubricUpdate{
				MispronunciationWeight: intPtr(0),
				OmissionWeight:         intPtr(100),
				InsertionWeight:        intPtr(50),
			},
			want: true,
		},
		{
			name: "negative weight",
			update: RubricUpdate{
				OmissionWeight: intPtr(-1),
			},
			want: false,
		},
		{
			name: "weight above 100",
			update: RubricUpdate{
				InsertionWeight: intPtr(101),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.update.Validate(); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRubricUpdateApply(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	settings := &RubricSettings{
		DoctorID:               "doc1",
		MispronunciationWeight: 50,
		OmissionWeight:         70,
		InsertionWeight:        30,
	}

	// Partial update must not touch fields it does not carry.
	update := RubricUpdate{MispronunciationWeight: intPtr(80)}
	update.Apply(settings)

	if settings.MispronunciationWeight != 80 {
		t.Errorf("MispronunciationWeight = %d, want 80", settings.MispronunciationWeight)
	}
	if settings.OmissionWeight != 70 {
		t.Errorf("OmissionWeight = %d, want 70", settings.OmissionWeight)
	}
	if settings.InsertionWeight != 30 {
		t.Errorf("InsertionWeight = %d, want 30", settings.InsertionWeight)
	}
}

func TestDefaultPatientName(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		want     string
	}{
		{
			name:     "long identity truncated",
			identity: "a1b2c3d4e5f6",
			want:     "Patient a1b2c3",
		},
		{
			name:     "short identity kept whole",
			identity: "p1",
			want:     "Patient p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultPatientName(tt.identity); got != tt.want {
				t.Errorf("DefaultPatientName(%q) = %q, want %q", tt.identity, got, tt.want)
			}
		})
	}
}
