package sharecode

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/modkit-dev/modkit/internal/xlog"
)

//go:embed cities.yaml
var citiesFixture []byte

// publicPeerCities is the curated table of "city" names to public overlay
// peer URIs (spec §3 share-code "c" field; SPEC_FULL supplement from
// original_source, which only gestures at "the curated table"), decoded
// once at init from the embedded YAML fixture.
var publicPeerCities = loadPublicPeerCities()

func loadPublicPeerCities() map[string]string {
	var cities map[string]string
	if err := yaml.Unmarshal(citiesFixture, &cities); err != nil {
		xlog.WithField("error", err).Warn("sharecode: failed to parse embedded cities fixture")
		return map[string]string{}
	}
	return cities
}

// cityForURI returns the city name for a peer URI, if curated.
func cityForURI(uri string) (string, bool) {
	for city, u := range publicPeerCities {
		if u == uri {
			return city, true
		}
	}
	return "", false
}

// uriForCity returns the peer URI for a curated city name.
func uriForCity(city string) (string, bool) {
	uri, ok := publicPeerCities[city]
	return uri, ok
}
