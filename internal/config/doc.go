// Package config provides configuration parsing for vstream.
//
// The configuration is stored in vstream.json. Every field is optional;
// missing fields keep their defaults and VSTREAM_ADDR / VSTREAM_LOG_LEVEL
// override the file.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":3000",
//	    "shutdownTimeout": "30s"
//	  },
//	  "render": {
//	    "doctype": true,
//	    "taskTimeout": "5s",
//	    "memo": true
//	  },
//	  "export": {
//	    "output": "dist",
//	    "bucket": "my-site",
//	    "prefix": "pages/",
//	    "concurrency": 8
//	  },
//	  "metrics": { "enabled": true, "path": "/metrics" },
//	  "tracing": { "enabled": false },
//	  "log": { "level": "debug", "format": "json" }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFile("vstream.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
