package unigram

// trainingCorpus is the embedded fallback corpus used when no persisted
// vocabulary artifact exists. It is small general English prose; the point
// is a usable vocabulary out of the box, not linguistic coverage.
const trainingCorpus = `
the quick brown fox jumps over the lazy dog
a journey of a thousand miles begins with a single step
to be or not to be that is the question
all that glitters is not gold
the early bird catches the worm but the second mouse gets the cheese
practice makes perfect and perfect practice makes permanent
actions speak louder than words
the pen is mightier than the sword
when in doubt leave it out
a picture is worth a thousand words
time and tide wait for no one
every cloud has a silver lining
the proof of the pudding is in the eating
you can lead a horse to water but you cannot make it drink
a chain is only as strong as its weakest link
fortune favors the bold and the prepared mind
knowledge speaks but wisdom listens
the best time to plant a tree was twenty years ago
the second best time is now
measure twice and cut once
simplicity is the ultimate sophistication
make everything as simple as possible but not simpler
the whole is greater than the sum of its parts
what gets measured gets managed
an ounce of prevention is worth a pound of cure
necessity is the mother of invention
a rolling stone gathers no moss
still waters run deep
many hands make light work
too many cooks spoil the broth
the squeaky wheel gets the grease
do not count your chickens before they hatch
birds of a feather flock together
absence makes the heart grow fonder
honesty is the best policy
practice what you preach
`
