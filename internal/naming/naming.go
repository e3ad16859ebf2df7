// Package naming строит уникальные имена объектов для хранилища.
package naming

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenLen длина случайного суффикса.
const TokenLen = 13

// Generator: источник уникальных имён. Now и Token подменяются в тестах.
type Generator struct {
	Now   func() time.Time
	Token func() string
}

func New() *Generator {
	return &Generator{Now: time.Now, Token: RandomToken}
}

// Unique возвращает "<originalName>-<unixMillis>-<token>".
// Имя не очищается и коллизии не проверяются.
func (g *Generator) Unique(originalName string) string {
	return fmt.Sprintf("%s-%d-%s", originalName, g.Now().UnixMilli(), g.Token())
}

var std = New()

func Unique(originalName string) string {
	return std.Unique(originalName)
}

// RandomToken: 13 символов [0-9a-z] из 122 случайных бит UUIDv4.
func RandomToken() string {
	id := uuid.New()
	s := new(big.Int).SetBytes(id[:]).Text(36)
	if len(s) < TokenLen {
		s = strings.Repeat("0", TokenLen-len(s)) + s
	}
	return s[len(s)-TokenLen:]
}
