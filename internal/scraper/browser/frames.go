package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// frameSelector matches both framesets and iframes; older portal pages still
// use the former.
const frameSelector = "iframe, frame"

// WaitForFrames waits for DOM stability on the page and, recursively, on
// every visible frame.
func WaitForFrames(page *rod.Page) error {
	if err := page.WaitDOMStable(time.Second, 0); err != nil {
		return fmt.Errorf("wait for DOM: %w", err)
	}

	frames, err := page.Elements(frameSelector)
	if err != nil {
		return nil
	}

	for _, el := range frames {
		visible, _ := el.Visible()
		if !visible {
			continue
		}

		frame, err := el.Frame()
		if err != nil {
			continue
		}

		if err := WaitForFrames(frame); err != nil {
			return err
		}
	}

	return nil
}

// InlineFrames replaces every frame of the live DOM with a
// <div data-captured-iframe="true"> holding the frame's body, then returns
// the page HTML as one document and the number of frames found.
//
// It modifies the live DOM; navigate away before interacting further.
func InlineFrames(page *rod.Page) (string, int, error) {
	frames, err := page.Elements(frameSelector)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get frame elements: %w", err)
	}

	if len(frames) > 0 {
		if _, err := page.Eval(inlineFramesJS); err != nil {
			return "", 0, fmt.Errorf("inline frames: %w", err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", 0, err
	}

	return html, len(frames), nil
}

const inlineFramesJS = `() => {
	function inlineFrames(root) {
		root.querySelectorAll('iframe, frame').forEach((frame) => {
			const container = root.createElement('div');
			container.setAttribute('data-captured-iframe', 'true');
			container.setAttribute('data-iframe-src', frame.src || '');
			container.setAttribute('data-iframe-name', frame.name || '');

			try {
				const doc = frame.contentDocument || frame.contentWindow.document;
				if (!doc || !doc.body) return;

				// Depth-first: nested frames go dead once the parent is serialized
				inlineFrames(doc);

				let content = '';
				if (doc.head) {
					doc.head.querySelectorAll('style').forEach((style) => {
						content += '<style data-from-iframe="true">' + style.textContent + '<\/style>';
					});
				}
				content += doc.body.innerHTML;
				container.innerHTML = content;
			} catch (e) {
				container.setAttribute('data-iframe-error', e.message);
				container.textContent = '[frame not accessible: ' + e.message + ']';
			}

			frame.parentNode.replaceChild(container, frame);
		});
	}
	inlineFrames(document);
}`
