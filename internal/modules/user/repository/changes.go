package repository

import "sort"

// ProfileChanges collects the columns a profile update may touch. Only the
// setters below exist, so no caller-supplied column name reaches SQL.
type ProfileChanges struct {
	values map[string]interface{}
}

func NewProfileChanges() *ProfileChanges {
	return &ProfileChanges{values: make(map[string]interface{})}
}

func (c *ProfileChanges) SetName(name string) *ProfileChanges {
	c.values["name"] = name
	return c
}

// SetEmail stores NULL for a nil email.
func (c *ProfileChanges) SetEmail(email *string) *ProfileChanges {
	if email == nil {
		c.values["email"] = nil
	} else {
		c.values["email"] = *email
	}
	return c
}

func (c *ProfileChanges) SetRole(role string) *ProfileChanges {
	c.values["role"] = role
	return c
}

func (c *ProfileChanges) SetCommunity(community string) *ProfileChanges {
	c.values["community"] = community
	return c
}

func (c *ProfileChanges) SetPasswordHash(hash string) *ProfileChanges {
	c.values["password_hash"] = hash
	return c
}

func (c *ProfileChanges) Empty() bool {
	return len(c.values) == 0
}

// Columns reports the touched columns, for logging.
func (c *ProfileChanges) Columns() []string {
	cols := make([]string, 0, len(c.values))
	for k := range c.values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
