package model

import "time"

// Person is the data structure for a person record as stored in the persons table.
// Name and Email are always present. Phone, Address and Age may be NULL in the database.
type Person struct {
	Id        int64     `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Email     string    `json:"email"      db:"email"`
	Phone     *string   `json:"phone"      db:"phone"`
	Address   *string   `json:"address"    db:"address"`
	Age       *int64    `json:"age"        db:"age"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PersonInput holds the mutable fields of a person as they are written to the database. A nil
// pointer is written as NULL.
type PersonInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Age     *int64
}
