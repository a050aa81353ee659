package composer

import "time"

// SetNowHandler -
func (composer *priceComposer) SetNowHandler(handler func() time.Time) {
	composer.evaluator.nowHandler = handler
}
