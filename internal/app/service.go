package app

import (
	"portage-resolvo/internal/adapters"
	"portage-resolvo/internal/ports"
)

type Service struct {
	SpecLoader ports.SpecPort
}

func NewService() Service {
	return Service{
		SpecLoader: adapters.NewSpecFileAdapter(),
	}
}
