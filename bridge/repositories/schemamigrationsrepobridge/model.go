package schemamigrationsrepobridge

import (
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/sdk/validation"
)

type Migration struct {
	Version   string  `json:"version"`
	Applied   bool    `json:"applied"`
	Modified  bool    `json:"modified"`
	AppliedAt *string `json:"appliedAt"`
}

func MarshalToBridge(st schemamigrationsrepo.Status) Migration {
	return Migration{
		Version:   st.Version,
		Applied:   st.Applied,
		Modified:  st.Modified,
		AppliedAt: validation.FormatISO8601Ptr(st.AppliedAt),
	}
}

func MarshalListToBridge(status []schemamigrationsrepo.Status) []Migration {
	out := make([]Migration, len(status))
	for i, st := range status {
		out[i] = MarshalToBridge(st)
	}
	return out
}
