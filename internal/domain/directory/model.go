package directory

import "time"

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Services  []string  `json:"services"`
	CreatedAt time.Time `json:"created_at"`
}

type Specialty struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Doctor is the public listing of a doctor-role user.
type Doctor struct {
	ID          int64    `json:"doctor_id"`
	Name        string   `json:"name"`
	Department  string   `json:"department,omitempty"`
	Specialties []string `json:"specialties"`
}
