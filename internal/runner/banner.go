package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/znetsec/znetscan/pkg/version"
)

var banner = `
                 __
 ____ ___  ___  / /_______________ _____
/_  // __ \/ _ \/ __/ ___/ ___/ __ '/ __ \
 / /_/ / / /  __/ /_(__  ) /__/ /_/ / / / /
/___/_/ /_/\___/\__/____/\___/\__,_/_/ /_/
`

// showBanner prints the project banner
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tznetsec.io %s\n\n", version.GetVersion())
}
