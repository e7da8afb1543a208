package session

// State is the wallet session record.
//
// Invariants: IsConnected is true exactly when Address is non-empty; ENSName
// and ENSAvatar are non-empty only when ChainID is mainnet; UserDisconnected
// is sticky across restarts and cleared only by a successful connect or
// silent refresh.
type State struct {
	Address          string `json:"address"`            // Lowercase hex
	ChainID          string `json:"chain_id"`           // Hex-prefixed, e.g. "0x1"
	IsConnected      bool   `json:"is_connected"`
	Balance          string `json:"balance"`            // Decimal ether-denominated string
	ENSName          string `json:"ens_name,omitempty"`
	ENSAvatar        string `json:"ens_avatar,omitempty"`
	UserDisconnected bool   `json:"user_disconnected"`
}

func defaultState() State {
	return State{Balance: "0"}
}

// Patch is a partial State for Store.Merge. Nil fields are left untouched.
type Patch struct {
	Address          *string
	ChainID          *string
	IsConnected      *bool
	Balance          *string
	ENSName          *string
	ENSAvatar        *string
	UserDisconnected *bool
}

func (p Patch) apply(s *State) {
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.ChainID != nil {
		s.ChainID = *p.ChainID
	}
	if p.IsConnected != nil {
		s.IsConnected = *p.IsConnected
	}
	if p.Balance != nil {
		s.Balance = *p.Balance
	}
	if p.ENSName != nil {
		s.ENSName = *p.ENSName
	}
	if p.ENSAvatar != nil {
		s.ENSAvatar = *p.ENSAvatar
	}
	if p.UserDisconnected != nil {
		s.UserDisconnected = *p.UserDisconnected
	}
}

// persistedSession is the on-disk projection of the session record.
type persistedSession struct {
	Version int   `json:"version"`
	State   State `json:"state"`
}
