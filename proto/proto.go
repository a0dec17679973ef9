package proto

const (
	ReqIdKey = "req-id"

	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)
