// token emite un JWT de acceso para la API.
//
// Uso: go run ./cmd/token -user bodega-01 -role operador [-minutes 480]
// Lee JWT_SECRET, JWT_ISSUER y JWT_EXPIRATION_MINUTES de la misma configuración que la API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/imanod-api/pkg/config"
	"github.com/jhoicas/imanod-api/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "identificador del usuario (claim user_id)")
	role := flag.String("role", jwt.RoleOperator, "rol: admin | operador")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "falta -user")
		os.Exit(2)
	}
	if *role != jwt.RoleAdmin && *role != jwt.RoleOperator {
		fmt.Fprintf(os.Stderr, "rol inválido: %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
