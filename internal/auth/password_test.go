package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("SecureP@ssw0rd!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "SecureP@ssw0rd!" {
		t.Fatal("digest equals plaintext")
	}
	if err := VerifyPassword(hash, "SecureP@ssw0rd!"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-password"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two digests of the same password are identical")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
	if err := VerifyPassword("", "anything"); err == nil {
		t.Fatal("expected error for empty digest")
	}
}
