package domain

type Employee struct {
	ID        int
	FirstName string
	LastName  string
	Document  string
	Phone     string
	Status    bool
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type PaymentMethod struct {
	ID          int
	Description string
}
