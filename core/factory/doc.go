// Package factory provides a small generic registry used to instantiate
// pluggable modules such as notification and metrics sinks from
// configuration. A module is described by a type string and a map of raw
// settings; factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[notify.Sink]()
//	reg.Register("log", func(conf map[string]any) (notify.Sink, error) {
//	    var c struct{ Component string `json:"component"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return notify.NewLogSink(logger.New(c.Component)), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "log"})
package factory
