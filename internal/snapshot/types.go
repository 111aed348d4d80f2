package snapshot

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// #region errors
var (
	// ErrVersionNotFound is returned when a version id is not in the store.
	ErrVersionNotFound = errors.New("version not found")
	// ErrNoCurrent is returned before the first commit.
	ErrNoCurrent = errors.New("no current network")
)

// #endregion errors

// #region record
// Record is one immutable network snapshot. Mutations produce a new Record.
type Record struct {
	VersionID string          `json:"versionId"`
	ParentID  string          `json:"parentId,omitempty"`
	Network   network.Network `json:"network"`
	Hash      string          `json:"hash"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// #endregion record

// #region version-summary
// Summary is a Record without its network body, for listings.
type Summary struct {
	VersionID  string    `json:"versionId"`
	ParentID   string    `json:"parentId,omitempty"`
	Hash       string    `json:"hash"`
	Note       string    `json:"note,omitempty"`
	Behaviours int       `json:"behaviours"`
	Outcomes   int       `json:"outcomes"`
	Values     int       `json:"values"`
	Links      int       `json:"links"`
	CreatedAt  time.Time `json:"createdAt"`
	Current    bool      `json:"current"`
}

// #endregion version-summary
