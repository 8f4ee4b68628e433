package domain

import "testing"

func TestUserInitials(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"both names", User{FirstName: "ada", LastName: "lovelace"}, "AL"},
		{"first only", User{FirstName: "Grace"}, "G"},
		{"accented", User{FirstName: "élodie", LastName: "Martin"}, "ÉM"},
		{"empty", User{}, "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Initials(); got != tt.want {
				t.Errorf("Initials() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Lovelace"}
	if got := u.FullName(); got != "Ada Lovelace" {
		t.Errorf("FullName() = %q, want %q", got, "Ada Lovelace")
	}
	if got := (User{LastName: "Hopper"}).FullName(); got != "Hopper" {
		t.Errorf("FullName() = %q, want %q", got, "Hopper")
	}
}
