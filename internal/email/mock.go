package email

import "github.com/stretchr/testify/mock"

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendVerificationCode(to, name, code string) error {
	args := m.Called(to, name, code)
	return args.Error(0)
}
