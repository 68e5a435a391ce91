package store

import (
	"testing"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
)

func envMap(t *testing.T, text string) *dotenv.Map {
	t.Helper()
	m, err := dotenv.ParseString(text, dotenv.DefaultOptions())
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return m
}

func TestStorePrecedence(t *testing.T) {
	t.Run("last registered source wins", func(t *testing.T) {
		s := New()
		s.Register("base", envMap(t, "A=base\nB=base\n"))
		s.Register("override", envMap(t, "A=override\n"))

		if v, _ := s.Get("A"); v != "override" {
			t.Errorf("A = %q, want %q", v, "override")
		}
		if v, _ := s.Get("B"); v != "base" {
			t.Errorf("B = %q, want %q", v, "base")
		}
	})

	t.Run("update keeps precedence position", func(t *testing.T) {
		s := New()
		base := s.Register("base", envMap(t, "A=base\n"))
		s.Register("override", envMap(t, "A=override\n"))

		if err := s.Update(base, envMap(t, "A=reloaded\nC=new\n")); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if v, _ := s.Get("A"); v != "override" {
			t.Errorf("A = %q, want override to still win", v)
		}
		if v, _ := s.Get("C"); v != "new" {
			t.Errorf("C = %q, want %q", v, "new")
		}
	})

	t.Run("update of unknown source fails", func(t *testing.T) {
		s := New()
		other := New()
		id := other.Register("elsewhere", envMap(t, "A=1\n"))
		if err := s.Update(id, envMap(t, "A=2\n")); err == nil {
			t.Error("Update() with foreign id should fail")
		}
	})

	t.Run("absent values still shadow", func(t *testing.T) {
		s := New()
		s.Register("base", envMap(t, "A=base\n"))
		s.Register("override", envMap(t, "A=\n"))

		v, ok := s.Get("A")
		if !ok {
			t.Fatal("A should exist")
		}
		if v != "" {
			t.Errorf("A = %q, want empty from the higher layer", v)
		}
	})

	t.Run("lookup distinguishes absent from empty", func(t *testing.T) {
		s := New()
		s.Register(".env", envMap(t, "GONE=\nEMPTY=\"\"\n"))

		if _, hasValue, ok := s.Lookup("GONE"); !ok || hasValue {
			t.Errorf("Lookup(GONE) = (hasValue %v, ok %v), want committed without a value", hasValue, ok)
		}
		if v, hasValue, ok := s.Lookup("EMPTY"); !ok || !hasValue || v != "" {
			t.Errorf("Lookup(EMPTY) = (%q, %v, %v), want present empty string", v, hasValue, ok)
		}
		if _, _, ok := s.Lookup("NOPE"); ok {
			t.Error("Lookup(NOPE) should not resolve")
		}
	})
}

func TestHierarchicalKeys(t *testing.T) {
	s := New()
	s.Register(".env", envMap(t, "CONNECTIONSTRINGS__DB=server=x\n"))

	for _, key := range []string{
		"CONNECTIONSTRINGS__DB",
		"connectionstrings:db",
		"ConnectionStrings:Db",
	} {
		if v, ok := s.Get(key); !ok || v != "server=x" {
			t.Errorf("Get(%q) = (%q, %v), want (server=x, true)", key, v, ok)
		}
	}

	keys := s.Keys()
	if len(keys) != 1 || keys[0] != "connectionstrings:db" {
		t.Errorf("Keys() = %v, want [connectionstrings:db]", keys)
	}
}

func TestSources(t *testing.T) {
	s := New()
	s.Register("base", envMap(t, "A=1\n"))
	s.Register("local", envMap(t, "A=2\n"))

	names := s.Sources()
	if len(names) != 2 || names[0] != "base" || names[1] != "local" {
		t.Errorf("Sources() = %v, want [base local]", names)
	}
}
