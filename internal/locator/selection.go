package locator

// Selection holds at most one selected store id.
type Selection struct {
	id string
}

// ID returns the selected id, or "" when nothing is selected.
func (s *Selection) ID() string {
	return s.id
}

// Select toggles: selecting the current id clears it, any other id
// replaces it. It returns the previous and the new selection.
func (s *Selection) Select(id string) (prev, next string) {
	prev = s.id
	if s.id == id {
		s.id = ""
	} else {
		s.id = id
	}
	return prev, s.id
}

// Clear drops the selection and returns what was selected.
func (s *Selection) Clear() (prev string) {
	prev = s.id
	s.id = ""
	return prev
}

// set replaces the selection without toggling.
func (s *Selection) set(id string) {
	s.id = id
}
