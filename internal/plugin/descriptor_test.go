package plugin

import (
	"errors"
	"testing"
)

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"foo", true},
		{"foo_bar", true},
		{"a1_b2", true},
		{"word_count2", true},
		{"x", true},
		{"", false},
		{"Foo", false},
		{"fooBar", false},
		{"foo__bar", false},
		{"_foo", false},
		{"foo_", false},
		{"1foo", false},
		{"foo-bar", false},
		{"foo bar", false},
		{"foo.bar", false},
	}
	for _, tt := range tests {
		if got := ValidIdentifier(tt.id); got != tt.want {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestDeriveClassName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"foo_bar", "FooBar"},
		{"x", "X"},
		{"word_count", "WordCount"},
		{"a1_b2", "A1B2"},
		{"task_runner", "TaskRunner"},
	}
	for _, tt := range tests {
		if got := DeriveClassName(tt.id); got != tt.want {
			t.Errorf("DeriveClassName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestClassToIdentifier(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{"FooBar", "foo_bar"},
		{"X", "x"},
		{"WordCount", "word_count"},
		{"TaskRunner", "task_runner"},
	}
	for _, tt := range tests {
		if got := ClassToIdentifier(tt.class); got != tt.want {
			t.Errorf("ClassToIdentifier(%q) = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestClassNameRoundTrip(t *testing.T) {
	for _, id := range []string{"foo_bar", "greeter", "word_count", "x"} {
		if got := ClassToIdentifier(DeriveClassName(id)); got != id {
			t.Errorf("round trip %q = %q", id, got)
		}
	}
}

func TestNewDescriptor(t *testing.T) {
	d, err := NewDescriptor("foo_bar", "/plugins/foo_bar.lua")
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}
	if d.ClassName != "FooBar" {
		t.Errorf("ClassName = %q, want FooBar", d.ClassName)
	}
	if d.Builtin {
		t.Error("script descriptor marked builtin")
	}
}

func TestNewDescriptorRejectsInvalid(t *testing.T) {
	if _, err := NewDescriptor("FooBar", "/plugins/FooBar.lua"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier", err)
	}
}

func TestDescriptorTitle(t *testing.T) {
	d := Descriptor{Identifier: "foo_bar", ClassName: "FooBar"}
	if got := d.Title(); got != "FooBar" {
		t.Errorf("Title = %q, want class name fallback", got)
	}
	d.DisplayName = "Foo Bar"
	if got := d.Title(); got != "Foo Bar" {
		t.Errorf("Title = %q, want display name", got)
	}
}
