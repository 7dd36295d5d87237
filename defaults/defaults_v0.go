package defaults

import (
	"fmt"

	"github.com/sahib/arbor/render"
	"github.com/sahib/config"
	"github.com/sirupsen/logrus"
)

func styleValidator(val interface{}) error {
	name, ok := val.(string)
	if !ok || !render.IsValidStyle(name) {
		return fmt.Errorf("invalid render style: %v", val)
	}

	return nil
}

func levelValidator(val interface{}) error {
	name, ok := val.(string)
	if !ok {
		return fmt.Errorf("log level must be a string: %v", val)
	}

	_, err := logrus.ParseLevel(name)
	return err
}

// DefaultsV0 is the default config validation for arbor
var DefaultsV0 = config.DefaultMapping{
	"render": config.DefaultMapping{
		"style": config.DefaultEntry{
			Default:      render.DefaultStyle,
			NeedsRestart: false,
			Docs:         "Connector style used by »arbor print« and »arbor diff« (or »list«).",
			Validator:    styleValidator,
		},
		"color": config.DefaultEntry{
			Default:      "auto",
			NeedsRestart: false,
			Docs: `When to use colors:

  * auto: Only if stdout is a terminal.
  * always: Also when piping the output.
  * never: Never.
`,
			Validator: config.EnumValidator("auto", "always", "never"),
		},
		"title": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Print the tree name as first line.",
		},
	},
	"codec": config.DefaultMapping{
		"format": config.DefaultEntry{
			Default:      "json",
			NeedsRestart: false,
			Docs:         "Encoding of written snapshots.",
			Validator:    config.EnumValidator("json", "yaml"),
		},
		"compression": config.DefaultEntry{
			Default:      "none",
			NeedsRestart: false,
			Docs:         "What compression algorithm to use for written snapshots.",
			Validator:    config.EnumValidator("none", "snappy", "lz4"),
		},
		"key_map": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Shorten the keys of node records (»i«, »s«, »k«).",
		},
		"verify": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Verify the checksum of snapshots when loading them.",
		},
	},
	"diff": config.DefaultMapping{
		"ordered": config.DefaultEntry{
			Default:      false,
			NeedsRestart: false,
			Docs:         "Also report nodes that changed their position among siblings.",
		},
		"reduce": config.DefaultEntry{
			Default:      false,
			NeedsRestart: false,
			Docs:         "Only show changed nodes and their ancestors.",
		},
		"compare": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Mark nodes whose payload changed as modified.",
		},
	},
	"log": config.DefaultMapping{
		"level": config.DefaultEntry{
			Default:      "warning",
			NeedsRestart: false,
			Docs:         "Minimum log level (debug, info, warning, error).",
			Validator:    levelValidator,
		},
		"show_caller": config.DefaultEntry{
			Default:      false,
			NeedsRestart: false,
			Docs:         "Print the source position of each log line.",
		},
	},
}
