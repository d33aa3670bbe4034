// Command admintoken signs a clinician or admin bearer token for the
// analysis routes using ADMIN_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/mentamind-backend/internal/platform/envutil"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/services"
)

func main() {
	subject := flag.String("sub", "", "token subject, e.g. the clinician's handle")
	role := flag.String("role", services.RoleClinician, "admin or clinician")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(2)
	}

	log, err := logger.New("production")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	auth := services.NewAdminAuthService(log, services.AdminAuthConfig{
		JWTSecret: envutil.String("ADMIN_JWT_SECRET", ""),
	})
	tok, err := auth.IssueToken(*subject, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
