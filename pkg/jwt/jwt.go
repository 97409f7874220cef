package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la identidad del actor ya
// autenticado. La verificación de credenciales ocurre fuera de este servicio;
// aquí el token solo transporta identidad, empresa y jerarquía hacia el núcleo
// de autorización.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"user_id"`
	EnterpriseID string `json:"enterprise_id"`
	Hierarchy    string `json:"hierarchy"` // super_admin, admin_empresa, medico_trabajo, ...
}

// Generate genera un token firmado con userID, enterpriseID y hierarchy.
func Generate(secret, userID, enterpriseID, hierarchy, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:       userID,
		EnterpriseID: enterpriseID,
		Hierarchy:    hierarchy,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve userID, enterpriseID y hierarchy.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (userID, enterpriseID, hierarchy string, err error) {
	if secret == "" {
		return "", "", "", fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", "", fmt.Errorf("claims inválidos")
	}
	return claims.UserID, claims.EnterpriseID, claims.Hierarchy, nil
}
