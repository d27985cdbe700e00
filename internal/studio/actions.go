package studio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// RenderSettings is the per-project render configuration as the page needs
// it: label strings for the pickers and a plain toggle for subtitles.
type RenderSettings struct {
	Quality   string
	FPS       string
	Subtitles bool
}

// ErrGenerateRejected means the remote app refused the script at generate
// time, usually because the editor flagged it as empty or over the length
// cap. The scene stays pending and is retried on the next run.
var ErrGenerateRejected = errors.New("generate rejected by the app")

// DismissOverlays closes any modal currently covering the page. Safe to call
// when nothing is open.
func (c *Client) DismissOverlays() {
	for i := 0; i < 3; i++ {
		var closed bool
		if err := c.eval(dismissOverlaysJS, &closed); err != nil || !closed {
			return
		}
		c.run(chromedp.Sleep(500 * time.Millisecond))
	}
}

// clickText clicks the first visible element matching css containing needle,
// retrying briefly since the page renders asynchronously.
func (c *Client) clickText(css, needle string) error {
	deadline := time.Now().Add(10 * time.Second)
	for {
		var clicked bool
		if err := c.eval(clickTextJS(css, needle), &clicked); err != nil {
			return err
		}
		if clicked {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("element %q matching %s not found", needle, css)
		}
		if err := c.run(chromedp.Sleep(500 * time.Millisecond)); err != nil {
			return err
		}
	}
}

// tryClickText is the single-shot variant for optional elements the current
// layout may not render at all.
func (c *Client) tryClickText(css, needle string) bool {
	var clicked bool
	if err := c.eval(clickTextJS(css, needle), &clicked); err != nil {
		return false
	}
	return clicked
}

// CreateFolder adds a project folder on the home page and returns to the
// main view.
func (c *Client) CreateFolder(name string) error {
	c.DismissOverlays()
	if err := c.clickText(`button, div[role="button"]`, "Create folder"); err != nil {
		return fmt.Errorf("create folder %s: %w", name, err)
	}
	c.run(chromedp.Sleep(time.Second))
	var filled bool
	if err := c.eval(fillInputJS(`div[role="dialog"] input, input[placeholder*="older"]`, name), &filled); err != nil || !filled {
		return fmt.Errorf("create folder %s: name field not found", name)
	}
	if err := c.clickText(`div[role="dialog"] button`, "Create"); err != nil {
		return fmt.Errorf("create folder %s: %w", name, err)
	}
	c.run(chromedp.Sleep(2 * time.Second))
	c.logger.Info("folder created", "folder", name)
	return nil
}

// SelectAvatar opens the avatar picker and clicks the card matching name,
// scrolling the list until it appears or the timeout runs out.
func (c *Client) SelectAvatar(name string, timeout time.Duration) error {
	c.DismissOverlays()
	if err := c.clickText(`a, button, div[role="button"]`, "Avatars"); err != nil {
		return fmt.Errorf("open avatar picker: %w", err)
	}
	c.run(chromedp.Sleep(2 * time.Second))

	deadline := time.Now().Add(timeout)
	for {
		var clicked bool
		if err := c.eval(avatarCardJS(name), &clicked); err != nil {
			return fmt.Errorf("select avatar %s: %w", name, err)
		}
		if clicked {
			c.run(chromedp.Sleep(2 * time.Second))
			c.logger.Info("avatar selected", "avatar", name)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("avatar %s not found after %s", name, timeout)
		}
		if err := c.eval(scrollListJS, nil); err != nil {
			return fmt.Errorf("select avatar %s: %w", name, err)
		}
		if err := c.run(chromedp.Sleep(time.Second)); err != nil {
			return err
		}
	}
}

// OpenEditor moves from the selected avatar into the script editor and waits
// for the editor surface to render.
func (c *Client) OpenEditor() error {
	if err := c.clickText("button", "Create with AI Studio"); err != nil {
		// older layout
		if err2 := c.clickText("button", "Create video"); err2 != nil {
			return fmt.Errorf("open editor: %w", err)
		}
	}
	deadline := time.Now().Add(30 * time.Second)
	for {
		var ready bool
		if err := c.eval(editorReadyJS, &ready); err != nil {
			return fmt.Errorf("open editor: %w", err)
		}
		if ready {
			c.DismissOverlays()
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("open editor: editor did not appear")
		}
		if err := c.run(chromedp.Sleep(time.Second)); err != nil {
			return err
		}
	}
}

// InsertScript focuses the script area and types text into it through the
// input domain, which survives the rich-text editor's event handling.
func (c *Client) InsertScript(text string) error {
	var focused bool
	if err := c.eval(focusEditorJS, &focused); err != nil {
		return fmt.Errorf("focus script editor: %w", err)
	}
	if !focused {
		return errors.New("focus script editor: editor not found")
	}
	if err := c.run(
		chromedp.Sleep(500*time.Millisecond),
		input.InsertText(text),
		chromedp.Sleep(time.Second),
	); err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

// SetVideoName renames the draft through the title field in the editor
// header.
func (c *Client) SetVideoName(name string) error {
	var filled bool
	err := c.eval(fillInputJS(`input[placeholder*="ntitled"], input[class*="title"]`, name), &filled)
	if err != nil {
		return fmt.Errorf("set video name: %w", err)
	}
	if !filled {
		// Some layouts show the title as a click-to-edit label.
		if err := c.clickText(`div[class*="title"], span[class*="title"]`, "Untitled"); err != nil {
			return errors.New("set video name: title field not found")
		}
		c.run(chromedp.Sleep(500 * time.Millisecond))
		if err := c.eval(fillInputJS("input", name), &filled); err != nil || !filled {
			return errors.New("set video name: title field not found")
		}
	}
	c.run(chromedp.Sleep(500 * time.Millisecond))
	return nil
}

// PrepareRender applies editor-level settings before the generate dialog:
// the unlimited render engine when available, and the subtitle toggle.
// Settings the layout does not expose are skipped silently, matching what a
// user clicking through would get.
func (c *Client) PrepareRender(cfg RenderSettings) error {
	if c.tryClickText("button", "Unlimited") {
		c.run(chromedp.Sleep(time.Second))
	}
	if cfg.Subtitles {
		if c.tryClickText(`button, div[role="switch"]`, "Subtitles") {
			c.run(chromedp.Sleep(500 * time.Millisecond))
		}
	}
	c.DismissOverlays()
	return nil
}

// OpenGenerateDialog clicks Generate and fails with ErrGenerateRejected when
// the app refuses the script.
func (c *Client) OpenGenerateDialog() error {
	var disabled bool
	if err := c.eval(generateDisabledJS, &disabled); err == nil && disabled {
		return ErrGenerateRejected
	}
	if err := c.clickText("button", "Generate"); err != nil {
		return fmt.Errorf("open generate dialog: %w", err)
	}
	c.run(chromedp.Sleep(2 * time.Second))
	return nil
}

// ApplyGenerateSettings sets resolution, frame rate and destination folder
// inside the generate dialog.
func (c *Client) ApplyGenerateSettings(cfg RenderSettings, folder string) error {
	if cfg.Quality != "" {
		if err := c.clickText(`div[role="dialog"] *`, cfg.Quality); err != nil {
			return fmt.Errorf("set quality %s: %w", cfg.Quality, err)
		}
	}
	if cfg.FPS != "" {
		label := cfg.FPS
		if !strings.Contains(strings.ToLower(label), "fps") {
			label += " fps"
		}
		if err := c.clickText(`div[role="dialog"] *`, label); err != nil {
			return fmt.Errorf("set frame rate %s: %w", cfg.FPS, err)
		}
	}
	if folder != "" {
		if c.tryClickText(`div[role="dialog"] *`, "Select folder") {
			c.run(chromedp.Sleep(time.Second))
			if err := c.clickText(`div[role="dialog"] *`, folder); err != nil {
				return fmt.Errorf("select folder %s: %w", folder, err)
			}
		}
	}
	return nil
}

// ConfirmSubmit clicks the dialog's submit button and waits for the render
// to be accepted.
func (c *Client) ConfirmSubmit() error {
	if err := c.clickText(`div[role="dialog"] button`, "Submit"); err != nil {
		if err2 := c.clickText(`div[role="dialog"] button`, "Generate"); err2 != nil {
			return fmt.Errorf("confirm submit: %w", err)
		}
	}
	c.run(chromedp.Sleep(3 * time.Second))
	c.DismissOverlays()
	return nil
}

// OpenFolder navigates home and opens the named project folder.
func (c *Client) OpenFolder(name string) error {
	if err := c.OpenHome(); err != nil {
		return err
	}
	if err := c.clickText(`a, div[role="button"], div[class*="folder"]`, name); err != nil {
		return fmt.Errorf("open folder %s: %w", name, err)
	}
	c.run(chromedp.Sleep(3 * time.Second))
	return nil
}

// ReadyVideoTitles returns the card text of every finished render in the
// currently open folder. Cards still rendering are excluded.
func (c *Client) ReadyVideoTitles() ([]string, error) {
	var titles []string
	if err := c.eval(readyCardTitlesJS, &titles); err != nil {
		return nil, fmt.Errorf("list ready videos: %w", err)
	}
	return titles, nil
}

// TriggerDownload opens the card menu for title and starts the browser
// download. The caller watches the download directory for the file.
func (c *Client) TriggerDownload(title string) error {
	var opened bool
	if err := c.eval(cardDownloadJS(title), &opened); err != nil {
		return fmt.Errorf("open card menu for %s: %w", title, err)
	}
	if !opened {
		return fmt.Errorf("card %s has no menu", title)
	}
	c.run(chromedp.Sleep(time.Second))
	if err := c.clickText(`div[role="menu"] *, li, div[class*="menu"] *`, "Download"); err != nil {
		return fmt.Errorf("download %s: %w", title, err)
	}
	c.run(chromedp.Sleep(2 * time.Second))
	c.logger.Info("download triggered", "video", title)
	return nil
}
