package model

// DomainValidator checks email domains against the university reference table.
type DomainValidator interface {
	IsAllowed(university, emailDomain string) bool
	Universities() []string
}
