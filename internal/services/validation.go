package services

import (
	"net/mail"
	"strings"
)

const MinPasswordLength = 8

var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func normalizeBloodType(bt string) string {
	return strings.ToUpper(strings.TrimSpace(bt))
}

func validBloodType(bt string) bool {
	for _, t := range BloodTypes {
		if t == bt {
			return true
		}
	}
	return false
}
