package browser

// Page-side scripts. Element scripts run with `this` bound to the element.

const (
	boxJS = `() => {
	const r = this.getBoundingClientRect();
	return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height};
}`

	tagJS = `() => this.tagName`

	styleJS = `(props) => {
	const cs = window.getComputedStyle(this);
	const out = {};
	for (const p of props) out[p] = cs.getPropertyValue(p);
	return out;
}`

	// contentJS lists the direct child nodes. Element children report
	// their full text so the extractor can size span placeholders.
	contentJS = `() => Array.from(this.childNodes).map(n => {
	if (n.nodeType === Node.TEXT_NODE) return {kind: "text", text: n.textContent};
	if (n.nodeType === Node.ELEMENT_NODE) return {kind: "element", tag: n.tagName.toLowerCase(), text: n.textContent};
	return {kind: "other"};
})`

	fontsJS = `() => document.fonts.ready.then(() => true)`

	// cloneJS enlarges a copy of the element at the page origin and moves
	// its slide out of the way so nothing else shows in the capture.
	cloneJS = `(scale, slideSelector) => {
	const cs = window.getComputedStyle(this);
	const size = parseFloat(cs.fontSize) || 16;
	const clone = this.cloneNode(true);
	Object.assign(clone.style, {
		position: "absolute", left: "0px", top: "0px", margin: "0",
		zIndex: "9999", background: "transparent",
		fontSize: (size * scale) + "px", color: cs.color, fontFamily: cs.fontFamily,
		width: "auto", height: "auto", transform: "none",
	});
	clone.setAttribute("data-h2d-clone", "");
	const slide = this.closest(slideSelector);
	if (slide && !slide.hasAttribute("data-h2d-shift")) {
		slide.setAttribute("data-h2d-shift", slide.style.transform || "");
		slide.style.transform = "translateY(1000px)";
	}
	document.body.appendChild(clone);
	return clone;
}`

	restoreJS = `() => {
	document.querySelectorAll("[data-h2d-clone]").forEach(n => n.remove());
	document.querySelectorAll("[data-h2d-shift]").forEach(n => {
		n.style.transform = n.getAttribute("data-h2d-shift");
		n.removeAttribute("data-h2d-shift");
	});
	return true;
}`
)
