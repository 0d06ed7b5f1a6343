// Package fallback provides canned assistant responses used when no
// model provider is reachable. Responses are routed by keyword topic so
// the reply stays loosely relevant to what the user asked.
package fallback

import "strings"

// Topic identifies which canned response category matched.
type Topic int

const (
	TopicGeneral Topic = iota
	TopicWeather
	TopicMarket
	TopicRegulation
	TopicPreservation
)

var topicKeywords = map[Topic][]string{
	TopicWeather:      {"weather", "wind", "wave", "rain", "storm", "sea condition"},
	TopicMarket:       {"price", "market", "sell", "buy", "rate", "cost"},
	TopicRegulation:   {"regulation", "ban", "license", "scheme", "government", "subsidy"},
	TopicPreservation: {"quality", "ice", "fresh", "preserve", "store", "grade"},
}

// Response sets are indexed by Topic. Languages without a native set
// fall back to English.
var responsesByLang = map[string][]string{
	"en": {
		"Based on current sea conditions near the Konkan coast, today is a good day for fishing! Wind speed is moderate at 3-4 m/s from the northwest. I recommend heading out early morning between 0400-0900 IST for the best catch. Indian Pomfret and Mackerel are in season. 🐟",
		"Namaste! The weather looks favorable for the next 3 days. Sea surface temperature is around 28°C which is ideal for Tuna and Seer Fish. However, please avoid venturing beyond 12 nautical miles as there are reports of rough patches further out. Stay safe! 🌊",
		"Great question! Based on recent market data, Pomfret is fetching ₹750-800/kg at Mumbai's Sassoon Docks. Surmai (Seer Fish) is at ₹700/kg with high demand. I'd suggest selling your Pomfret catch today while prices are up. For Mackerel, prices are stable at ₹200/kg. 💰",
		"The fishing ban period along the west coast (June 1 - July 31) doesn't apply to traditional non-mechanised boats. If you're using a motorised trawler, please ensure your license is current. The PM Matsya Sampada Yojana offers subsidies up to ₹3 lakh for equipment upgrades. Visit your district fisheries office for more details. 📋",
		"For the best catch quality, remember to ice your fish immediately after catching. Maintain a temperature of 0-4°C. Gut larger fish within 2 hours. Premium grade fish can earn you ₹120-200/kg more than Standard grade — that's a big difference over a season! 🧊",
	},
	"ta": {
		"கொங்கன் கடற்கரைக்கு அருகிலுள்ள தற்போதைய கடல் நிலைமைகளின் அடிப்படையில், இன்று மீன்பிடிக்க ஒரு நல்ல நாள்! காற்றாலை மேற்கு திசையிலிருந்து 3-4 மீ/வி வேகத்தில் மிதமாக உள்ளது. சிறந்த பிடிப்பிற்காக காலை 0400-0900 IST க்கு இடையில் செல்வதற்கு பரிந்துரைக்கிறேன். பாம்ஃப்ரெட் மற்றும் கானாங்கெளுத்தி பருவத்தில் உள்ளன. 🐟",
		"நமஸ்காரம்! அடுத்த 3 நாட்களுக்கு வானிலை சாதகமாக தெரிகிறது. கடல் பரப்பளவு சுமார் 28°C வெப்பநிலையில் உள்ளது, இது சூரை மற்றும் சீலா மீன்களுக்கு ஏற்றது. இருந்தாலும், கடல் கொந்தளிப்பு அதிகமாக உள்ளதால் 12 கடல் மைல்களுக்கு அப்பால் செல்வதைத் தவிர்க்கவும். கவனமாகப் செல்லுங்கள்! 🌊",
		"நல்ல கேள்வி! சமீபத்திய சந்தை தரவுகளின் அடிப்படையில், மும்பையின் சாசூன் டாக்ஸில் பாம்ஃப்ரெட் ₹750-800/கிலோவுக்குச் செல்கிறது. அதிக தேவையுடன் சுறாமீன் (Seer Fish) ₹700/கிலோவில் உள்ளது. பாம்ஃப்ரெட் இன்றைய விலையில் விற்கப் பரிந்துரைக்கிறேன். கானாங்கெளுத்தி விலை ₹200/கிலோவில் நிலையாக உள்ளது. 💰",
		"பழமைவாத படகுகளுக்கு மீன்பிடி தடைக்காலம் (ஜூன் 1 - ஜூலை 31) பொருந்தாது. இயந்திரமயமாக்கப்பட்ட டிராலரை பயன்படுத்தினால், உரிமம் தற்போதையதில் உள்ளதா என்பதை உறுதிப்படுத்தவும். PM மத்ஸ்ய சம்பதா யோஜனா மானியங்களை வழங்குகிறது. 📋",
		"சிறந்த தரத்தை பெற, மீன்பிடித்தவுடன் உடனடியாக பனிக்கட்டியிடவும். 0-4°C வெப்பநிலையை பராமரிக்கவும். பெரிய மீன்களை 2 மணி நேரங்களுக்குள் துண்டிக்கவும். 🧊",
	},
}

// Classify returns the topic matched by keywords in the user's message.
func Classify(input string) Topic {
	lower := strings.ToLower(input)
	for _, topic := range []Topic{TopicWeather, TopicMarket, TopicRegulation, TopicPreservation} {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				return topic
			}
		}
	}
	return TopicGeneral
}

// Respond returns a canned response for the user's message in the given
// language. Languages without a native response set get English.
func Respond(input, lang string) string {
	set, ok := responsesByLang[lang]
	if !ok {
		set = responsesByLang["en"]
	}
	return set[Classify(input)]
}

var couldNotCompleteByLang = map[string]string{
	"en": "I could not complete that request. Please try asking in a simpler way.",
	"ta": "அந்தக் கோரிக்கையை என்னால் முடிக்க முடியவில்லை. தயவுசெய்து இன்னும் எளிமையாகக் கேளுங்கள்.",
}

var emptyResponseByLang = map[string]string{
	"en": "I processed your request but wasn't able to compose a response. Please try again.",
	"ta": "உங்கள் கோரிக்கையைச் செயல்படுத்தினேன், ஆனால் பதிலை உருவாக்க முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
}

// CouldNotComplete is the terminal text for turns that hit the tool
// round limit without a final answer, in the given language. Languages
// without a translation get English.
func CouldNotComplete(lang string) string {
	if msg, ok := couldNotCompleteByLang[lang]; ok {
		return msg
	}
	return couldNotCompleteByLang["en"]
}

// EmptyResponse is the text substituted when the model completes
// without producing any content, in the given language.
func EmptyResponse(lang string) string {
	if msg, ok := emptyResponseByLang[lang]; ok {
		return msg
	}
	return emptyResponseByLang["en"]
}
