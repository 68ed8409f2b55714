package domain

// Account identifies a balance holder on the ledger. Owner is the principal
// that controls the funds; Subaccount optionally splits the owner's funds
// into independent buckets (empty string means the default subaccount).
type Account struct {
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
}

// Key returns the canonical map key for the account. Owner and subaccount
// are joined with a separator that cannot appear in either part.
func (a Account) Key() string {
	if a.Subaccount == "" {
		return a.Owner
	}
	return a.Owner + "\x00" + a.Subaccount
}

// Equal reports whether two accounts identify the same balance.
func (a Account) Equal(b Account) bool {
	return a.Owner == b.Owner && a.Subaccount == b.Subaccount
}

func (a Account) String() string {
	if a.Subaccount == "" {
		return a.Owner
	}
	return a.Owner + "." + a.Subaccount
}
