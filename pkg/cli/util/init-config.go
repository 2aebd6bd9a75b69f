package util

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
)

// InitConfig reads in the global config file and ENV variables if set.
func InitConfig(cfgFile *string) func() {
	return func() {
		if *cfgFile != "" {
			// Use config file from the flag.
			viper.SetConfigFile(*cfgFile)
		} else {
			// Search config in home directory with name ".dbkit" (without extension).
			if home, err := os.UserHomeDir(); err == nil {
				viper.AddConfigPath(home)
			}
			viper.SetConfigType("yaml")
			viper.SetConfigName(".dbkit")
		}

		viper.AutomaticEnv() // read in environment variables that match

		// If a config file is found, read it in.
		if err := viper.ReadInConfig(); err == nil {
			pterm.Debug.Printfln("Using config file: %s", viper.ConfigFileUsed())
		} else if *cfgFile != "" {
			pterm.Warning.Printfln("Could not read config file %s: %s", *cfgFile, err)
		}
	}
}
