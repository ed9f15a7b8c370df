package handler

import (
	"errors"
	"sync"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request bodies:
//
//	condition - one of loose, cib, new
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
			return domain.Condition(fl.Field().String()).Valid()
		})
	})
	return err
}
