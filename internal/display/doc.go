// Package display formats user-facing terminal output for the mchat CLI:
// warnings, success and failure lines, and multi-step progress.
//
// All output goes through a Printer bound to an io.Writer. Color is decided
// once, when the Printer is created:
//
//	p := display.NewPrinter(os.Stdout, display.ColorEnabled(os.Stdout))
//	p.Success("Loaded %d items", 20)
//	p.Warning(display.Warning{
//	    Title:      "Item 4 restarted",
//	    Message:    "stored result no longer matches the item definition",
//	    Suggestion: "Answer the item again",
//	})
package display
