package cli

import (
	"errors"
	"flag"
	"fmt"

	"heygen-batch/internal/config"
	"heygen-batch/internal/studio"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := config.InitWorkspace(*settingsPath)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Println("workspace initialized")
	fmt.Printf("settings: %s\n", res.SettingsPath)
	fmt.Printf("created_settings: %t\n", res.CreatedSettings)
	fmt.Printf("created_avatar_config: %t\n", res.CreatedAvatars)
	fmt.Println("checks:")
	printChecks(res.DoctorResult, "  ")
	if !res.DoctorResult.OK {
		fmt.Println("next: fix the failing checks above, then run `heygen-batch doctor`")
		return nil
	}
	fmt.Println("next: heygen-batch profile")
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*settingsPath)
	if err != nil {
		return err
	}
	res, err := config.Doctor(settings)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	printChecks(res, "")
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}

// runProfile opens a visible browser on the sign-in page and waits until the
// user closes it. Everything the login leaves behind lands in the profile
// directory, which the batch commands reuse headlessly.
func runProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*settingsPath)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := studio.LaunchForLogin(ctx, settings.ProfileDir, settings.BaseURL)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println("log in to your account in the browser window")
	fmt.Println("close the window when you are done; the session is saved for future runs")
	client.Wait()
	fmt.Printf("profile saved to %s\n", settings.ProfileDir)
	return nil
}

func printChecks(res config.DoctorResult, indent string) {
	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s%s: %s (%s)\n", indent, c.Name, status, c.Message)
	}
}
