package resource

import "slices"

// Link is a directed relation between two resource classes. It either binds a uri
// variable to identifiers (ParameterName set) or describes a relation traversal used
// by nested routes (FromProperty/ToProperty set).
type Link struct {
	ParameterName       string
	FromClass           string
	ToClass             string
	FromProperty        string
	ToProperty          string
	Identifiers         []string
	CompositeIdentifier bool
	Security            string
}

// WithIdentifiers returns a copy of the link with the given identifiers
func (l Link) WithIdentifiers(identifiers []string) Link {
	l.Identifiers = slices.Clone(identifiers)
	return l
}

// Equal reports whether both links describe the same binding
func (l Link) Equal(other Link) bool {
	return l.ParameterName == other.ParameterName &&
		l.FromClass == other.FromClass &&
		l.ToClass == other.ToClass &&
		l.FromProperty == other.FromProperty &&
		l.ToProperty == other.ToProperty &&
		l.CompositeIdentifier == other.CompositeIdentifier &&
		l.Security == other.Security &&
		slices.Equal(l.Identifiers, other.Identifiers)
}

func cloneLinks(links []Link) []Link {
	if links == nil {
		return nil
	}
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.WithIdentifiers(l.Identifiers)
	}
	return out
}
