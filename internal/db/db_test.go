package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fashionec/internal/model"
)

func TestDialect(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost:5432/fashion_ec", "postgres"},
		{"postgresql://u:p@localhost/fashion_ec?sslmode=disable", "postgres"},
		{"root:root@tcp(localhost:3306)/fashion_ec?parseTime=true", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.want+" "+tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, Dialect(tt.dsn).Name())
		})
	}
}

func TestModels_ParentsBeforeChildren(t *testing.T) {
	models := Models()
	assert.Len(t, models, 5)
	assert.IsType(t, &model.User{}, models[0])
	assert.IsType(t, &model.OrderItem{}, models[len(models)-1])
}
