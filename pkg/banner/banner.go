package banner

import (
	"fmt"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/config"
)

const banner = `
 ██████╗██████╗ ██╗   ██╗██╗███████╗███████╗██████╗
██╔════╝██╔══██╗██║   ██║██║██╔════╝██╔════╝██╔══██╗
██║     ██████╔╝██║   ██║██║███████╗█████╗  ██║  ██║
██║     ██╔══██╗██║   ██║██║╚════██║██╔══╝  ██║  ██║
╚██████╗██║  ██║╚██████╔╝██║███████║███████╗██████╔╝
 ╚═════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝╚══════╝╚══════╝╚═════╝
`

// Print writes the startup banner with the effective config summary.
func Print(eff config.Effective, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Storage.DBPath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	fmt.Println("\n== Checks =====================================================")
	if eff.Config != nil && eff.Config.Security.TokenSecret != "" {
		fmt.Println("- Token secret: set")
	} else {
		fmt.Println("- Token secret: MISSING (set security.token_secret or CRUISE_TOKEN_SECRET)")
	}
	tlsOK := eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != ""
	if tlsOK {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if eff.Config != nil {
		fmt.Printf("- Heartbeat: every %s (offline past twice that)\n", eff.Config.HeartbeatInterval())
		if eff.Config.Census.Enabled {
			cron := eff.Config.Census.Cron
			if cron == "" {
				cron = "default"
			}
			fmt.Printf("- Census: enabled (cron=%s)\n", cron)
		} else {
			fmt.Println("- Census: disabled")
		}
	}

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/auth/register' -d '{\"email\":\"a@b.c\",\"password\":\"secret1\",\"username\":\"ada\"}'\n", addr)
	fmt.Printf("curl -H 'Authorization: Bearer <token>' 'http://localhost%s/v1/rooms/global/messages'\n", addr)

	fmt.Println("\n== Logs: ======================================================")
}
