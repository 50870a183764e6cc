package logger

import (
	"strings"
	"testing"
)

func TestPolicyFor(t *testing.T) {
	cases := []struct {
		key  string
		want fieldAction
	}{
		{"password", actionRedact},
		{"refresh_token", actionRedact},
		{"contact_phone", actionRedact},
		{"email", actionRedact},
		{"user_id", actionHash},
		{"owner_user_id", actionHash},
		{"livestock_tracking_id", actionHash},
		{"cut_sheet_id", actionKeep},
		{"organization_id", actionKeep},
	}
	for _, c := range cases {
		if got := policyFor(c.key); got != c.want {
			t.Fatalf("policyFor(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestScrubValueNested(t *testing.T) {
	in := map[string]interface{}{
		"cut_sheet_id": "abc",
		"password":     "hunter2",
		"nested": map[string]interface{}{
			"phone": "555-0100",
			"count": 3,
		},
	}
	out, ok := scrubValue("", in).(map[string]interface{})
	if !ok {
		t.Fatal("scrubValue changed the map shape")
	}
	if out["cut_sheet_id"] != "abc" {
		t.Fatalf("benign key altered: %v", out["cut_sheet_id"])
	}
	if out["password"] != "[REDACTED]" {
		t.Fatalf("password not redacted: %v", out["password"])
	}
	nested := out["nested"].(map[string]interface{})
	if nested["phone"] != "[REDACTED]" {
		t.Fatalf("nested phone not redacted: %v", nested["phone"])
	}
	if nested["count"] != 3 {
		t.Fatalf("nested benign value altered: %v", nested["count"])
	}
}

func TestHashValueStableAndShort(t *testing.T) {
	a := hashValue("user-123")
	b := hashValue("user-123")
	if a != b {
		t.Fatal("hash is not deterministic")
	}
	if !strings.HasPrefix(a, "hash:") || len(a) > len("hash:")+12 {
		t.Fatalf("unexpected hash format %q", a)
	}
	if hashValue("") != "" {
		t.Fatal("empty value should stay empty")
	}
}

func TestLooksLikeJWT(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	if !looksLikeJWT(jwt) {
		t.Fatal("jwt-shaped string not detected")
	}
	if looksLikeJWT("plain text") || looksLikeJWT("a.b.c") {
		t.Fatal("false positive")
	}
}
