package web

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookie = "flash"
	flashTTL    = 5 * time.Minute
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashWarning FlashKind = "warning"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

type flashClaims struct {
	Flashes []Flash `json:"flashes"`
	jwt.RegisteredClaims
}

// Flasher guarda mensajes de un solo uso en una cookie firmada (HS256 con SECRET_KEY).
type Flasher struct {
	secret []byte
	now    func() time.Time
}

func NewFlasher(secret string) *Flasher {
	return &Flasher{secret: []byte(secret), now: time.Now}
}

// Add agrega un mensaje a los ya pendientes en el request.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, kind FlashKind, msg string) {
	pending := f.read(r)
	pending = append(pending, Flash{Kind: kind, Message: msg})

	now := f.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{
		Flashes: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	})
	signed, err := tok.SignedString(f.secret)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flashTTL.Seconds()),
	})
}

// Pop devuelve los mensajes pendientes y borra la cookie.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	out := f.read(r)
	if _, err := r.Cookie(flashCookie); err == nil {
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	}
	return out
}

func (f *Flasher) read(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	var claims flashClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (any, error) {
		return f.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		// firma inválida o expirada: se ignora
		return nil
	}
	return claims.Flashes
}
