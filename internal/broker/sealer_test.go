package broker

import (
	"testing"
)

const testSecret = "this-is-a-valid-32-character-key"

func TestNewSealer_ShortSecret(t *testing.T) {
	_, err := NewSealer([]byte("short"), "ig")
	if err != ErrInvalidKey {
		t.Errorf("NewSealer() error = %v, want %v", err, ErrInvalidKey)
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer([]byte(testSecret), "ig-password")
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}

	testCases := []struct {
		name      string
		plaintext string
	}{
		{"simple password", "mypassword123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "пароль密码🔐"},
		{"long password", "this-is-a-very-long-password-that-should-still-work-correctly-even-with-many-characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := s.Seal(tc.plaintext)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if string(sealed.Ciphertext) == tc.plaintext {
				t.Error("ciphertext should not equal plaintext")
			}

			opened, err := s.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if opened != tc.plaintext {
				t.Errorf("Open() = %q, want %q", opened, tc.plaintext)
			}
		})
	}
}

func TestSealer_DifferentLabelsCannotOpen(t *testing.T) {
	a, _ := NewSealer([]byte(testSecret), "ig-password")
	b, _ := NewSealer([]byte(testSecret), "something-else")

	sealed, _ := a.Seal("secret")
	if _, err := b.Open(sealed); err != ErrDecryptionFailed {
		t.Errorf("Open() with other label error = %v, want %v", err, ErrDecryptionFailed)
	}
}

func TestSealer_NoncesAreRandom(t *testing.T) {
	s, _ := NewRandomSealer("ig-password")

	first, _ := s.Seal("same")
	second, _ := s.Seal("same")

	if string(first.Nonce) == string(second.Nonce) {
		t.Error("nonces should be different for each seal")
	}
	if string(first.Ciphertext) == string(second.Ciphertext) {
		t.Error("ciphertexts should be different for each seal")
	}
}

func TestSealer_OpenInvalidInputs(t *testing.T) {
	s, _ := NewSealer([]byte(testSecret), "ig-password")

	testCases := []struct {
		name    string
		sealed  Sealed
		wantErr error
	}{
		{"zero value", Sealed{}, ErrInvalidCiphertext},
		{"empty ciphertext", Sealed{Ciphertext: []byte{}, Nonce: make([]byte, 12)}, ErrInvalidCiphertext},
		{"wrong nonce size", Sealed{Ciphertext: []byte("ciphertext"), Nonce: []byte("short")}, ErrInvalidCiphertext},
		{"corrupted ciphertext", Sealed{Ciphertext: []byte("corrupted"), Nonce: make([]byte, 12)}, ErrDecryptionFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Open(tc.sealed); err != tc.wantErr {
				t.Errorf("Open() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
