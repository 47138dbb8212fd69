package patient

import "time"

// Patient maps to the users table. Only the columns the query service needs
// are carried; the table itself is owned by the upstream ingestion system.
type Patient struct {
	ID        int        `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Mobile    *string    `db:"mobile_number" json:"mobile_number,omitempty"`
	RoleID    int        `db:"role_id" json:"role_id"`
	Status    int        `db:"status" json:"status"`
	DOB       *time.Time `db:"dob" json:"dob,omitempty"`
	CreatedAt *time.Time `db:"created" json:"created,omitempty"`
}

// FullName returns "First Last".
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Info is the compact patient view returned to callers.
type Info struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ToInfo builds the compact view.
func (p *Patient) ToInfo() *Info {
	info := &Info{
		ID:   p.ID,
		Name: p.FullName(),
	}
	if p.Mobile != nil {
		info.Mobile = *p.Mobile
	}
	if p.Email != nil {
		info.Email = *p.Email
	}
	return info
}
