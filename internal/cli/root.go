package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "profile":
		return runProfile(args[1:])
	case "submit":
		return runSubmit(args[1:])
	case "download":
		return runDownload(args[1:])
	case "run":
		return runBatch(args[1:])
	case "status":
		return runStatus(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("heygen-batch: batch submission and download orchestrator for HeyGen avatar videos")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  heygen-batch init")
	fmt.Println("  heygen-batch profile")
	fmt.Println("  heygen-batch run")
	fmt.Println("  heygen-batch status")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init      create workspace config, input/output directories")
	fmt.Println("  profile   open a browser window to log in; the profile is reused afterwards")
	fmt.Println("  doctor    run filesystem and configuration preflight checks")
	fmt.Println("  submit    build a queue (interactive or --queue file) and submit every scene")
	fmt.Println("  download  poll submitted videos and download finished renders")
	fmt.Println("  run       submit, then keep polling until everything is downloaded")
	fmt.Println("  status    tracking session rollup per project and scene")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Scene folders live under <input_dir>/<project>/<scene>/ with one .txt script each")
	fmt.Println("  - Rerunning download after an interruption resumes from tracking.json")
}
