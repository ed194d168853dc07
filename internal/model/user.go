package model

// User is a registered account.  Email is the unique key.  Password holds
// whatever the configured hasher produced: the plain text itself in the
// default demo mode, or a bcrypt hash.
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// UserSummary is the public view of a user returned by login and
// registration.
type UserSummary struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Summary strips the credential from u.
func (u User) Summary() UserSummary {
	return UserSummary{Email: u.Email, Name: u.Name}
}
