// Package valkit provides input validators with a shared contract: a boolean
// verdict per value plus an ordered set of failure messages rendered from
// per-validator templates.
//
// Validators live in sub-packages and register themselves with the factory
// registry when imported:
//
//   - Credit card numbers (github.com/gobeaver/valkit/creditcard)
//   - Image files (github.com/gobeaver/valkit/file)
//
// # Basic Usage
//
//	import "github.com/gobeaver/valkit/creditcard"
//
//	v, err := creditcard.New(creditcard.Visa)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !v.IsValid("4111111111111112") {
//	    for _, msg := range v.Messages() {
//	        fmt.Println(msg.Key, msg.Text)
//	    }
//	}
//
// Validators can also be created by name:
//
//	import _ "github.com/gobeaver/valkit/file"
//
//	v, err := valkit.Create("fileisimage", "image/png, image/jpeg")
//
// # Options
//
// Constructors accept an option record ([Options], a map[string]any, or any
// [Pairs] iterable) or a validator-specific shorthand such as a type name.
// Every validator understands the message options:
//
//	valkit.Options{
//	    valkit.OptionMessageLength: 40,    // truncate rendered messages
//	    valkit.OptionValueObscured: true,  // render %value% as stars
//	    valkit.OptionMessages: map[string]string{
//	        "creditcardChecksum": "Card %value% has a bad check digit",
//	    },
//	}
//
// # Error Handling
//
// Invalid configuration is reported immediately by constructors and setters
// as an [*InvalidArgumentError]:
//
//	_, err := creditcard.New(valkit.Options{"service": 42})
//	if valkit.IsInvalidArgument(err) {
//	    // bad option
//	}
//
// Validation failures never return errors; they are reported by IsValid and
// Messages.
//
// # Configuration
//
// Defaults can be loaded from the environment with the BEAVER_ prefix, for
// example BEAVER_VALKIT_CREDITCARD_TYPES=Visa,Mastercard:
//
//	cfg, err := valkit.GetConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = cfg.Apply()
//	v, err := creditcard.New(cfg.CreditCardOptions())
//
// # Observability
//
// Outcomes are logged with logrus at debug level and counted on the
// Prometheus registry returned by [MetricsRegistry].
package valkit
