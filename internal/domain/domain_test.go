package domain

import (
	"errors"
	"testing"
)

func TestNewCredentialsValidation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "bob", "secret", nil},
		{"blank username", "", "secret", ErrInvalidUsername},
		{"whitespace username", "   ", "secret", ErrInvalidUsername},
		{"blank password", "bob", "", ErrInvalidPassword},
		{"whitespace password", "bob", "\t ", ErrInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creds, err := NewCredentials(tc.username, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewCredentials() error = %v, want %v", err, tc.wantErr)
			}
			if err == nil && creds.Username != "bob" {
				t.Fatalf("unexpected username %q", creds.Username)
			}
		})
	}
}

func TestNewUserRequiresAllFields(t *testing.T) {
	if _, err := NewUser("bob", "secret", "Bob", ""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("NewUser() error = %v, want ErrInvalidName", err)
	}
	if _, err := NewUser("bob", "secret", " ", "Builder"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("NewUser() error = %v, want ErrInvalidName", err)
	}
	user, err := NewUser(" bob ", "secret", " Bob ", " Builder ")
	if err != nil {
		t.Fatalf("NewUser() error = %v", err)
	}
	if user.Username != "bob" || user.FirstName != "Bob" || user.LastName != "Builder" {
		t.Fatalf("unexpected user %#v", user)
	}
}

func TestFilterBlank(t *testing.T) {
	got := FilterBlank([]string{"a", "", "b", "   ", "c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("FilterBlank() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FilterBlank()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAllComplete(t *testing.T) {
	if AllComplete(nil) {
		t.Fatal("empty checklist must not be complete")
	}
	if AllComplete([]ChecklistItem{{Done: true}, {Done: false}}) {
		t.Fatal("checklist with one pending item must not be complete")
	}
	if !AllComplete([]ChecklistItem{{Done: true}, {Done: true}}) {
		t.Fatal("fully done checklist must be complete")
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	tasks := []Task{
		{ID: 1, Title: "Groceries", Done: false},
		{ID: 2, Title: "Taxes", Done: true},
		{ID: 3, Title: "Trip", Done: false},
	}
	ongoing, completed := Partition(tasks)
	if len(ongoing) != 2 || ongoing[0].ID != 1 || ongoing[1].ID != 3 {
		t.Fatalf("unexpected ongoing partition %#v", ongoing)
	}
	if len(completed) != 1 || completed[0].ID != 2 {
		t.Fatalf("unexpected completed partition %#v", completed)
	}
}
