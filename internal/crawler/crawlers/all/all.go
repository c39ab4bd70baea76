// Package all imports all available crawler adapters for side-effect
// registration.
//
// Import this package from your main to ensure all adapters are registered:
//   import _ "github.com/courtscan/courtscan/internal/crawler/crawlers/all"
package all

import (
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/activelambeth"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/better"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/citysport"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/decathlon"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/everyoneactive"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/haringey"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/southcroydon"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/southwark"
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/towerhamlets"
)
