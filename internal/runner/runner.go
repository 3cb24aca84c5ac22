package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/gologger"
	"github.com/znetsec/znetscan/pkg/discovery/portscan"
	"github.com/znetsec/znetscan/pkg/discovery/scan"
	"github.com/znetsec/znetscan/pkg/scanlog"
	"github.com/znetsec/znetscan/pkg/types"
)

// Runner contains the internal logic of the program
type Runner struct {
	options  *Options
	services portscan.ServiceNames
	au       *aurora.Aurora
}

// NewRunner creates a Runner from parsed options
func NewRunner(options *Options) (*Runner, error) {
	services := portscan.DefaultServiceNames()
	if options.ServiceDB != "" {
		data, err := os.ReadFile(options.ServiceDB)
		if err != nil {
			return nil, fmt.Errorf("failed to read service database: %w", err)
		}
		services, err = portscan.LoadServiceNames(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service database: %w", err)
		}
	}

	return &Runner{
		options:  options,
		services: services,
		au:       aurora.New(aurora.WithColors(!options.NoColor)),
	}, nil
}

// Run executes one discovery scan and renders its event stream
func (r *Runner) Run(ctx context.Context) error {
	if r.options.IfList {
		return r.listInterfaces()
	}

	coordinator := scan.NewCoordinator(scan.Options{
		Timeout:     r.options.Timeout(),
		Workers:     r.options.Workers,
		UseARPTable: r.options.ARPTable,
	})

	var writer *scanlog.DeviceWriter
	if r.options.Output != "" {
		file, err := os.Create(r.options.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close()
		}()
		writer = scanlog.NewDeviceWriter(coordinator.ID(), file)
		defer writer.Close()
	}

	var discovered []types.Device
	lastProgress := -1

	for event := range coordinator.Run(ctx) {
		switch event.Kind {
		case scan.EventFatal:
			return event.Err

		case scan.EventLog:
			if strings.HasPrefix(event.Message, "Error") {
				gologger.Warning().Msgf("%s", event.Message)
			} else {
				gologger.Info().Msgf("%s", event.Message)
			}

		case scan.EventProgress:
			if event.Progress == lastProgress {
				continue
			}
			lastProgress = event.Progress
			gologger.Verbose().Msgf("Scan progress: %d%%", event.Progress)

		case scan.EventDeviceFound:
			discovered = append(discovered, *event.Device)
			if writer != nil {
				writer.Write(*event.Device)
			}
			if !r.options.JSON {
				r.printDevice(event.Device)
			}

		case scan.EventScanComplete:
			gologger.Info().Msgf("Scan completed: %d device(s) found", len(discovered))
		}
	}

	if r.options.JSON {
		encoded, err := json.MarshalIndent(discovered, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode devices: %w", err)
		}
		gologger.Silent().Msgf("%s", string(encoded))
	}

	return nil
}

// printDevice renders one device as an indented tree block, the terminal
// counterpart of one node per device with MAC and port children
func (r *Runner) printDevice(device *types.Device) {
	header := r.au.Bold(device.Address).String()
	if device.HasHostname() {
		header += fmt.Sprintf(" (%s)", r.au.Cyan(device.Hostname))
	}
	gologger.Silent().Msgf("%s", header)
	gologger.Silent().Msgf("  MAC Address: %s", device.LinkLayerAddress)

	if len(device.OpenPorts) == 0 {
		gologger.Silent().Msgf("  Open Ports: none")
		return
	}
	gologger.Silent().Msgf("  Open Ports:")
	for _, port := range device.OpenPorts {
		gologger.Silent().Msgf("    Port %d (%s)", port, r.au.Green(r.services.Lookup(port)))
	}
}

// Close releases runner resources
func (r *Runner) Close() {}
