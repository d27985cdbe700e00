package studio

import (
	"fmt"
	"strconv"
)

// The remote app ships no stable ids, so everything below works from text
// content and broad structural selectors. These heuristics carry no
// behavioral guarantee; the driver retries around them and reports failures
// per scene.

// ratingWatchdogJS auto-dismisses the recurring rating popup on every page.
const ratingWatchdogJS = `
(() => {
  const needle = "How likely are you to recommend us";
  const labels = ["Not now", "No thanks", "Skip", "Close", "Done", "OK", "Continue"];
  const tryDismiss = () => {
    const dialogs = document.querySelectorAll('div[role="dialog"], div.rc-dialog-wrap');
    for (const dialog of dialogs) {
      if (!(dialog.innerText || "").includes(needle)) continue;
      const buttons = Array.from(dialog.querySelectorAll("button"));
      const target = buttons.find((btn) => {
        const aria = (btn.getAttribute("aria-label") || "").toLowerCase();
        if (aria.includes("close")) return true;
        return labels.includes((btn.innerText || "").trim());
      });
      if (target) { target.click(); return; }
    }
  };
  setInterval(tryDismiss, 1200);
})();
`

// dismissOverlaysJS closes any visible modal by clicking a dismiss-style
// button. Returns true when something was dismissed.
const dismissOverlaysJS = `
(() => {
  const labels = ["Close", "Done", "OK", "Continue", "Not now", "No thanks", "Skip", "Cancel"];
  const overlays = document.querySelectorAll('div[role="dialog"], div.rc-dialog-wrap, div.tw-stack-dialog');
  for (const overlay of overlays) {
    const r = overlay.getBoundingClientRect();
    if (r.width === 0 || r.height === 0) continue;
    for (const btn of overlay.querySelectorAll("button")) {
      if (labels.includes((btn.innerText || "").trim())) { btn.click(); return true; }
    }
  }
  return false;
})()
`

// editorReadyJS reports whether the script editor surface is on screen.
const editorReadyJS = `
(() => {
  if (document.body && document.body.innerText.includes("Type your script")) return true;
  const candidates = document.querySelectorAll('span[data-node-view-content], div[contenteditable="true"]');
  for (const el of candidates) {
    const r = el.getBoundingClientRect();
    if (r.width > 0 && r.height > 0) return true;
  }
  return false;
})()
`

// scrollListJS nudges the page and any tall scroll container downward, used
// by the avatar search.
const scrollListJS = `
(() => {
  window.scrollBy(0, 1000);
  for (const el of document.querySelectorAll("div")) {
    if (el.scrollHeight > el.clientHeight + 200) el.scrollBy(0, 1000);
  }
  return true;
})()
`

// clickTextJS builds an expression that clicks the first visible element
// matching css whose text contains needle (case-insensitive). An empty
// needle matches any element. Returns true when a click happened.
func clickTextJS(css, needle string) string {
	return fmt.Sprintf(`
(() => {
  const needle = %s.toLowerCase();
  for (const el of document.querySelectorAll(%s)) {
    if (needle && !(el.innerText || "").toLowerCase().includes(needle)) continue;
    const r = el.getBoundingClientRect();
    if (r.width === 0 || r.height === 0) continue;
    el.scrollIntoView({block: "center"});
    el.click();
    return true;
  }
  return false;
})()
`, strconv.Quote(needle), strconv.Quote(css))
}

// fillInputJS builds an expression that sets a value on the first input
// matching css through the native setter so the framework sees the change.
func fillInputJS(css, value string) string {
	return fmt.Sprintf(`
(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  const setter = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, "value").set;
  setter.call(el, %s);
  el.dispatchEvent(new Event("input", {bubbles: true}));
  el.dispatchEvent(new Event("change", {bubbles: true}));
  return true;
})()
`, strconv.Quote(css), strconv.Quote(value))
}

// focusEditorJS clicks into the script editor so inserted text lands there.
const focusEditorJS = `
(() => {
  const byText = Array.from(document.querySelectorAll("span, p, div")).find(
    (el) => (el.innerText || "").startsWith("Type your script"));
  const target = byText ||
    document.querySelector('span[data-node-view-content]') ||
    document.querySelector('div[contenteditable="true"]');
  if (!target) return false;
  target.scrollIntoView({block: "center"});
  target.click();
  return true;
})()
`

// avatarCardJS builds an expression that clicks the avatar card whose text
// contains the given name.
func avatarCardJS(name string) string {
	return clickTextJS(`div[class*="tw-rounded"]`, name)
}

// readyCardTitlesJS collects the visible text of completed-render cards;
// cards still rendering carry no playable preview and are skipped.
const readyCardTitlesJS = `
(() => {
  const titles = [];
  for (const card of document.querySelectorAll('div.tw-group:has(iconpark-icon[name="play"])')) {
    const text = (card.innerText || "").trim();
    if (text) titles.push(text);
  }
  return titles;
})()
`

// generateDisabledJS reports whether the generate button exists but refuses
// input, which the remote app uses for invalid scripts.
const generateDisabledJS = `
(() => {
  for (const btn of document.querySelectorAll("button")) {
    if ((btn.innerText || "").trim() === "Generate") return btn.disabled === true;
  }
  return false;
})()
`

// cardDownloadJS builds an expression that opens the overflow menu of the
// card matching title and clicks its download entry.
func cardDownloadJS(title string) string {
	return fmt.Sprintf(`
(() => {
  const title = %s;
  for (const card of document.querySelectorAll('div.tw-group:has(iconpark-icon[name="play"])')) {
    if (!(card.innerText || "").includes(title)) continue;
    card.scrollIntoView({block: "center"});
    const more = card.querySelector('button:has(iconpark-icon[name="more-level"])');
    if (!more) return false;
    more.click();
    return true;
  }
  return false;
})()
`, strconv.Quote(title))
}
