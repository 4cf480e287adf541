package naming

// Word lists for codenames (Docker-style). Entries are lowercase ASCII
// letters only so they can never collide with the divider or separators.
var adjectives = []string{
	"admiring", "adoring", "agitated", "amazing", "angry",
	"awesome", "blissful", "bold", "brave", "busy",
	"charming", "clever", "cool", "cranky", "crisp",
	"dazzling", "determined", "dreamy", "eager", "ecstatic",
	"elastic", "elated", "elegant", "eloquent", "epic",
	"fervent", "festive", "focused", "friendly", "frosty",
	"funny", "gallant", "gifted", "goofy", "gracious",
	"happy", "hardcore", "hopeful", "hungry", "inspiring",
	"jolly", "jovial", "keen", "kind", "laughing",
	"loving", "lucid", "magical", "modest", "musing",
	"nervous", "nifty", "nostalgic", "optimistic", "peaceful",
	"pensive", "practical", "priceless", "quirky", "quizzical",
	"relaxed", "reverent", "romantic", "serene", "sharp",
	"silly", "sleepy", "stoic", "strange", "sweet",
	"tender", "thirsty", "trusting", "upbeat", "vibrant",
	"vigilant", "vigorous", "wizardly", "wonderful", "youthful",
	"zealous", "zen",
}

var surnames = []string{
	"albattani", "allen", "almeida", "archimedes", "babbage",
	"banach", "bardeen", "bartik", "bell", "bhabha",
	"blackwell", "bohr", "booth", "bose", "brattain",
	"burnell", "cannon", "carson", "cerf", "chandrasekhar",
	"chebyshev", "clarke", "cohen", "cori", "cray",
	"curie", "darwin", "davinci", "diffie", "dijkstra",
	"dirac", "easley", "edison", "einstein", "elion",
	"engelbart", "euclid", "euler", "faraday", "fermat",
	"fermi", "feynman", "franklin", "galileo", "galois",
	"gauss", "germain", "goldberg", "goodall", "hamilton",
	"hawking", "heisenberg", "hellman", "hertz", "hodgkin",
	"hopper", "hypatia", "jackson", "jemison", "jennings",
	"johnson", "kalam", "keller", "kepler", "khorana",
	"kilby", "knuth", "lamarr", "lamport", "leakey",
	"leavitt", "liskov", "lovelace", "maxwell", "mayer",
	"mccarthy", "mcclintock", "meitner", "mendel", "merkle",
	"mirzakhani", "moore", "morse", "napier", "nash",
	"neumann", "newton", "nightingale", "noether", "noyce",
	"pascal", "payne", "pike", "poincare", "ptolemy",
	"raman", "ramanujan", "ride", "ritchie", "rubin",
	"sammet", "shamir", "shannon", "shockley", "sinoussi",
	"snyder", "stonebraker", "sutherland", "swartz", "tesla",
	"thompson", "torvalds", "turing", "villani", "wescoff",
	"wiles", "williams", "wilson", "wing", "wozniak",
	"wright", "wu", "yalow", "yonath",
}
