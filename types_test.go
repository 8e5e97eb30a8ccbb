package goSession

import (
	"errors"
	"testing"
)

func TestProfileValidate(t *testing.T) {
	valid := Profile{Name: "Ana", Username: "ana", Password: "password1", RepeatedPassword: "password1"}

	tests := []struct {
		name   string
		mutate func(*Profile)
		ok     bool
	}{
		{name: "valid", mutate: func(*Profile) {}, ok: true},
		{name: "name blank", mutate: func(p *Profile) { p.Name = "   " }},
		{name: "name too short after trim", mutate: func(p *Profile) { p.Name = " A " }},
		{name: "name two runes", mutate: func(p *Profile) { p.Name = "Jö" }, ok: true},
		{name: "username empty", mutate: func(p *Profile) { p.Username = "" }},
		{name: "username too short", mutate: func(p *Profile) { p.Username = "ab" }},
		{name: "password empty", mutate: func(p *Profile) { p.Password, p.RepeatedPassword = "", "" }},
		{name: "password too short", mutate: func(p *Profile) { p.Password, p.RepeatedPassword = "1234567", "1234567" }},
		{name: "password mismatch", mutate: func(p *Profile) { p.RepeatedPassword = "password2" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrProfileInvalid) {
				t.Fatalf("expected ErrProfileInvalid, got %v", err)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		StatusBootstrapping: "bootstrapping",
		StatusAnonymous:     "anonymous",
		StatusAuthenticated: "authenticated",
		Status(9):           "unknown",
	} {
		if got := s.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestSnapshotFromContext(t *testing.T) {
	if _, ok := SnapshotFromContext(t.Context()); ok {
		t.Fatal("expected no snapshot in bare context")
	}
	ctx := WithSnapshot(t.Context(), Snapshot{Status: StatusAnonymous})
	snap, ok := SnapshotFromContext(ctx)
	if !ok || snap.Status != StatusAnonymous || !snap.Bootstrapped() || snap.Authenticated() {
		t.Fatalf("unexpected snapshot %+v ok=%v", snap, ok)
	}
}
