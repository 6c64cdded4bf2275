package mapper

import (
	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
)

const StatusSuccess = "success"

// CreateAccountRequest is the body of POST /api/v1/accounts/.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCustomerRequest is the body of the public registration endpoint.
type RegisterCustomerRequest struct {
	Name         *string `json:"name"`
	PhoneNumber  *string `json:"phone_number"`
	UserEmail    string  `json:"user_email"`
	UserPassword string  `json:"user_password"`
}

// CreateCustomerRequest is the body of the authenticated profile endpoint.
type CreateCustomerRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CustomerEnvelope struct {
	Status   string   `json:"status"`
	Desc     string   `json:"desc"`
	Customer Customer `json:"customer"`
}

type Account struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type AccountEnvelope struct {
	Status  string  `json:"status"`
	Desc    string  `json:"desc"`
	Account Account `json:"account"`
}

func ToCreateAccountInput(req CreateAccountRequest) customerports.CreateAccountInput {
	return customerports.CreateAccountInput{Email: req.Email, Password: req.Password}
}

func ToRegisterInput(req RegisterCustomerRequest) customerports.RegisterInput {
	return customerports.RegisterInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.UserEmail,
		Password:    req.UserPassword,
	}
}

func ToCreateCustomerInput(req CreateCustomerRequest) customerports.CreateCustomerInput {
	return customerports.CreateCustomerInput{Name: req.Name, PhoneNumber: req.PhoneNumber}
}

// FromProfile renders the creation envelope shared by both profile endpoints.
func FromProfile(profile *customerdomain.Profile) CustomerEnvelope {
	env := CustomerEnvelope{Status: StatusSuccess, Desc: "create customer profile"}
	if profile == nil {
		return env
	}
	if profile.Customer != nil {
		env.Customer.Name = profile.Customer.Name
	}
	if profile.Account != nil {
		env.Customer.Email = profile.Account.Email
	}
	return env
}

func FromAccount(account *customerdomain.Account) AccountEnvelope {
	env := AccountEnvelope{Status: StatusSuccess, Desc: "create user account"}
	if account != nil {
		env.Account = Account{ID: account.ID, Email: account.Email}
	}
	return env
}
