//go:build darwin

package wk

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"

	"github.com/bnema/wkview/internal/native"
)

const webKitFramework = "/System/Library/Frameworks/WebKit.framework/WebKit"

const nsUTF8StringEncoding = 4

// NSViewWidthSizable | NSViewHeightSizable
const autoresizeFill = 2 | 16

// cgRect mirrors CGRect {origin{x,y}, size{w,h}}.
type cgRect struct {
	X, Y, Width, Height float64
}

var loadWebKit = sync.OnceValue(func() error {
	if _, err := purego.Dlopen(webKitFramework, purego.RTLD_NOW|purego.RTLD_GLOBAL); err != nil {
		return fmt.Errorf("load %s: %w", webKitFramework, err)
	}
	return nil
})

type objcEngine struct {
	native.ObjC
}

var defaultEngine = &objcEngine{}

// Default returns the WKWebView engine, loading WebKit on first use.
func Default() (Engine, error) {
	if err := loadWebKit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return defaultEngine, nil
}

func sel(name string) objc.SEL {
	return objc.RegisterName(name)
}

func class(name string) objc.ID {
	return objc.ID(objc.GetClass(name))
}

func release(id objc.ID) {
	if id != 0 {
		id.Send(sel("release"))
	}
}

// nsString returns an owned NSString; callers release it.
func nsString(s string) objc.ID {
	return class("NSString").Send(sel("alloc")).Send(
		sel("initWithBytes:length:encoding:"),
		unsafe.Pointer(unsafe.StringData(s)), uint(len(s)), uint(nsUTF8StringEncoding),
	)
}

// nsURL returns an owned NSURL, or zero when s does not parse.
func nsURL(s string) objc.ID {
	str := nsString(s)
	defer release(str)
	return class("NSURL").Send(sel("alloc")).Send(sel("initWithString:"), str)
}

func goString(str objc.ID) string {
	if str == 0 {
		return ""
	}
	p := objc.Send[uintptr](str, sel("UTF8String"))
	if p == 0 {
		return ""
	}
	n := objc.Send[uint](str, sel("lengthOfBytesUsingEncoding:"), uint(nsUTF8StringEncoding))
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

func (e *objcEngine) NewWebView(cfg ViewConfig) (native.ID, error) {
	host := objc.ID(cfg.Host)
	delegate := objc.ID(cfg.Delegate)
	if host == 0 {
		return 0, errors.New("host view is nil")
	}

	host.Send(sel("setAutoresizesSubviews:"), true)

	config := class("WKWebViewConfiguration").Send(sel("alloc")).Send(sel("init"))
	defer release(config)

	scheme := nsString(cfg.Scheme)
	config.Send(sel("setURLSchemeHandler:forURLScheme:"), delegate, scheme)
	release(scheme)

	if cfg.Debug {
		prefs := config.Send(sel("preferences"))
		yes := class("NSNumber").Send(sel("alloc")).Send(sel("initWithBool:"), true)
		key := nsString("developerExtrasEnabled")
		prefs.Send(sel("setValue:forKey:"), yes, key)
		release(key)
		release(yes)
	}

	ucm := config.Send(sel("userContentController"))
	name := nsString(cfg.MessageHandler)
	ucm.Send(sel("addScriptMessageHandler:name:"), delegate, name)
	release(name)

	for _, src := range cfg.InitScripts {
		source := nsString(src)
		// WKUserScriptInjectionTimeAtDocumentStart, all frames.
		script := class("WKUserScript").Send(sel("alloc")).Send(
			sel("initWithSource:injectionTime:forMainFrameOnly:"), source, int(0), false,
		)
		ucm.Send(sel("addUserScript:"), script)
		release(script)
		release(source)
	}

	bounds := objc.Send[cgRect](host, sel("bounds"))
	view := class("WKWebView").Send(sel("alloc")).Send(sel("initWithFrame:configuration:"), bounds, config)
	if view == 0 {
		return 0, errors.New("WKWebView initWithFrame:configuration: returned nil")
	}
	view.Send(sel("setAutoresizingMask:"), uint(autoresizeFill))
	view.Send(sel("setNavigationDelegate:"), delegate)
	host.Send(sel("addSubview:"), view)

	return native.ID(view), nil
}

func (e *objcEngine) DetachWebView(view native.ID, messageHandler string) {
	v := objc.ID(view)
	ucm := v.Send(sel("configuration")).Send(sel("userContentController"))
	name := nsString(messageHandler)
	ucm.Send(sel("removeScriptMessageHandlerForName:"), name)
	release(name)
	v.Send(sel("setNavigationDelegate:"), objc.ID(0))
	v.Send(sel("removeFromSuperview"))
}

func (e *objcEngine) LoadURL(view native.ID, url string) {
	u := nsURL(url)
	if u == 0 {
		return
	}
	defer release(u)
	req := class("NSURLRequest").Send(sel("alloc")).Send(sel("initWithURL:"), u)
	defer release(req)
	objc.ID(view).Send(sel("loadRequest:"), req)
}

func (e *objcEngine) LoadHTML(view native.ID, html, baseURL string) {
	markup := nsString(html)
	defer release(markup)
	base := nsURL(baseURL)
	defer release(base)
	objc.ID(view).Send(sel("loadHTMLString:baseURL:"), markup, base)
}

func (e *objcEngine) EvaluateJavaScript(view native.ID, script string) {
	src := nsString(script)
	defer release(src)
	objc.ID(view).Send(sel("evaluateJavaScript:completionHandler:"), src, objc.ID(0))
}

func (e *objcEngine) Title(view native.ID) string {
	return goString(objc.ID(view).Send(sel("title")))
}

func (e *objcEngine) MessageBody(message native.ID) (string, bool) {
	body := objc.ID(message).Send(sel("body"))
	if body == 0 {
		return "", false
	}
	if !objc.Send[bool](body, sel("isKindOfClass:"), objc.GetClass("NSString")) {
		return "", false
	}
	return goString(body), true
}

func (e *objcEngine) TaskRequestURL(task native.ID) (string, string) {
	url := objc.ID(task).Send(sel("request")).Send(sel("URL"))
	return goString(url.Send(sel("absoluteString"))), goString(url.Send(sel("path")))
}

func (e *objcEngine) TaskDidReceiveResponse(task native.ID, resp URLResponse) {
	u := nsURL(resp.URL)
	defer release(u)
	mime := nsString(resp.MIMEType)
	defer release(mime)
	r := class("NSURLResponse").Send(sel("alloc")).Send(
		sel("initWithURL:MIMEType:expectedContentLength:textEncodingName:"),
		u, mime, int(resp.ContentLength), objc.ID(0),
	)
	defer release(r)
	objc.ID(task).Send(sel("didReceiveResponse:"), r)
}

func (e *objcEngine) TaskDidReceiveData(task native.ID, data []byte) {
	var p unsafe.Pointer
	if len(data) > 0 {
		p = unsafe.Pointer(&data[0])
	}
	d := class("NSData").Send(sel("alloc")).Send(sel("initWithBytes:length:"), p, uint(len(data)))
	defer release(d)
	objc.ID(task).Send(sel("didReceiveData:"), d)
}

func (e *objcEngine) TaskDidFinish(task native.ID) {
	objc.ID(task).Send(sel("didFinish"))
}

func (e *objcEngine) TaskDidFail(task native.ID, code int) {
	domain := nsString("NSURLErrorDomain")
	defer release(domain)
	nsErr := class("NSError").Send(sel("alloc")).Send(sel("initWithDomain:code:userInfo:"), domain, code, objc.ID(0))
	defer release(nsErr)
	objc.ID(task).Send(sel("didFailWithError:"), nsErr)
}
