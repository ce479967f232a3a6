package register

// Session is the register state of one client view: its filters and the
// rows it is editing. Views never see each other's filters or drafts.
type Session struct {
	filters Filters
	drafts  map[string]*Draft
}

// NewSession starts a view with every filter on All.
func NewSession() *Session {
	return &Session{
		filters: Filters{Account: All, Type: All},
		drafts:  make(map[string]*Draft),
	}
}

func (s *Session) Filters() Filters {
	return s.filters
}

// Editing reports whether the row of transaction id is being edited.
func (s *Session) Editing(id string) bool {
	_, ok := s.drafts[id]
	return ok
}
